package models

// RowLabelUnavailable replaces the label of a row that has no title element.
const RowLabelUnavailable = "N/A"

// TableRow is one scraped row: the label followed by the positional values.
type TableRow []string

// Record maps a header name to the cell text in one row.
type Record map[string]string

// TableResult is an ordered list of records, one per row in DOM order.
type TableResult []Record

// Table is the raw reconstruction of a statement table before zipping.
type Table struct {
	Headers []string
	Rows    []TableRow
}
