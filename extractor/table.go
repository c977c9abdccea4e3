package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/fintables/models"
)

// ParseTable reconstructs headers and rows from a container snapshot.
//
// The snapshot is normally the container's own outer HTML; if the
// container element is not found inside it the whole document is searched.
func (e *Extractor) ParseTable(containerHTML string) (*models.Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(containerHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "failed to parse table container", err)
	}

	root := doc.FindMatcher(e.container).First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	table := &models.Table{Headers: []string{}, Rows: []models.TableRow{}}

	root.FindMatcher(e.headers).Each(func(_ int, s *goquery.Selection) {
		table.Headers = append(table.Headers, cellText(s))
	})

	root.FindMatcher(e.rows).Each(func(_ int, s *goquery.Selection) {
		label := models.RowLabelUnavailable
		if title := s.FindMatcher(e.rowTitle).First(); title.Length() > 0 {
			label = cellText(title)
		}

		row := models.TableRow{label}
		s.FindMatcher(e.data).Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cellText(cell))
		})
		table.Rows = append(table.Rows, row)
	})

	return table, nil
}

// cellText collapses whitespace runs the way rendered text reads.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// Zip pairs headers with row cells by position.
//
// Policy: the shorter sequence wins. Headers without a cell are left out of
// the record (never padded with ""), and cells beyond the last header are
// dropped. A repeated header keeps the value of its last occurrence.
func Zip(headers []string, row models.TableRow) models.Record {
	n := min(len(headers), len(row))
	rec := make(models.Record, n)
	for i := 0; i < n; i++ {
		rec[headers[i]] = row[i]
	}
	return rec
}

// ZipAll zips every row of t against its headers, preserving row order.
func ZipAll(t *models.Table) models.TableResult {
	result := make(models.TableResult, 0, len(t.Rows))
	for _, row := range t.Rows {
		result = append(result, Zip(t.Headers, row))
	}
	return result
}
