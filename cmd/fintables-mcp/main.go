package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/fintables/models"
)

// statementFilters maps the tool's "statement" argument to a response field.
var statementFilters = map[string]func(*models.FinancialsResponse) models.TableResult{
	"income_statement": func(r *models.FinancialsResponse) models.TableResult { return r.IncomeStatement },
	"balance_sheet":    func(r *models.FinancialsResponse) models.TableResult { return r.BalanceSheet },
	"cash_flow":        func(r *models.FinancialsResponse) models.TableResult { return r.CashFlow },
}

func main() {
	apiURL := os.Getenv("FINTABLES_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	s := server.NewMCPServer(
		"fintables",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_financials",
		mcp.WithDescription("Scrape the income statement, balance sheet and cash flow tables for a stock ticker. Each statement is a list of rows keyed by column header (e.g. Breakdown, TTM, period end dates). Takes 20-60 seconds because every call renders the pages in a fresh headless browser."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Ticker symbol as listed on the quote site, e.g. 'MSFT', 'CBA.AX', 'BRK-B'"),
		),
		mcp.WithString("statement",
			mcp.Description("Return only one statement: 'income_statement', 'balance_sheet' or 'cash_flow'. Default returns all three."),
			mcp.Enum("all", "income_statement", "balance_sheet", "cash_flow"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeFinancials(apiURL, &http.Client{Timeout: 180 * time.Second}))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the fintables API and returns the status
// code and response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(apiURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func handleScrapeFinancials(apiURL string, client *http.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || strings.TrimSpace(ticker) == "" {
			return mcp.NewToolResultError("ticker is required"), nil
		}
		statement := request.GetString("statement", "all")

		status, respBody, err := apiPost(ctx, client, apiURL, "/scrape", models.ScrapeRequest{Ticker: ticker})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if status != http.StatusOK {
			var errResp models.ErrorResponse
			if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
				return mcp.NewToolResultError(fmt.Sprintf("API returned HTTP %d", status)), nil
			}
			if errResp.Code != "" {
				return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", errResp.Code, errResp.Error)), nil
			}
			return mcp.NewToolResultError(errResp.Error), nil
		}

		var fin models.FinancialsResponse
		if err := json.Unmarshal(respBody, &fin); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var result any = fin
		if pick, ok := statementFilters[statement]; ok {
			result = map[string]any{
				"ticker":  fin.Ticker,
				statement: pick(&fin),
			}
		}

		text, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultStructured(result, string(text)), nil
	}
}
