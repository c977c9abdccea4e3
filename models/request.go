package models

// ScrapeRequest is the payload for POST /scrape.
type ScrapeRequest struct {
	// Ticker is the quote symbol, e.g. "MSFT" or "BRK-B". Required.
	Ticker string `json:"ticker" binding:"required,ticker"`
}
