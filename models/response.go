package models

// FinancialsResponse is the response for POST /scrape.
type FinancialsResponse struct {
	Ticker          string      `json:"ticker"`
	IncomeStatement TableResult `json:"incomeStatement"`
	BalanceSheet    TableResult `json:"balanceSheet"`
	CashFlow        TableResult `json:"cashFlow"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`

	// Code is the machine-readable ScrapeError code. Empty for plain
	// validation failures.
	Code string `json:"code,omitempty"`

	// Traceback carries the diagnostic trace for server-side failures.
	Traceback string `json:"traceback,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	ActiveSessions int    `json:"active_sessions"`
	Version        string `json:"version"`
}
