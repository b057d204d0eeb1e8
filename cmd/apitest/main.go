// Command apitest runs smoke tests against a running Hijri API server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/hijri-api/internal/api"
	"github.com/zapponejosh/hijri-api/internal/calendar"
	"github.com/zapponejosh/hijri-api/internal/observance"
)

// =============================================================================
// Response Types
// =============================================================================

// APIResponse is the response envelope with data left raw for typed decoding.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *api.ErrorInfo  `json:"error,omitempty"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status      string `json:"status"`
	Observances int    `json:"observances"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Hijri API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	tr.testHealth()
	tr.testToday()
	tr.testKnownConversions()
	tr.testYears()
	tr.testMonthGrid()
	tr.testObservances()
	tr.testEdgeCases()
	tr.testRoundTrips()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := json.Unmarshal(resp.Data, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (%d observances)", health.Observances))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testToday() {
	tr.printSection("Today")

	var today api.DateResponse
	if err := tr.getData("/api/v1/hijri/today", &today); err != nil {
		tr.recordError("Today", err.Error())
		return
	}

	if !today.Hijri.Valid() {
		tr.recordError("Today", fmt.Sprintf("invalid Hijri date %v", today.Hijri))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Today: %s = %s AH (%s)", today.Gregorian, today.Formatted, today.WeekdayName))
}

func (tr *TestRunner) testKnownConversions() {
	tr.printSection("Known Conversions")

	cases := []struct {
		gregorian string
		hijri     string
	}{
		{"0622-07-16", "0001-01-01"},
		{"2024-01-01", "1445-06-22"},
		{"2025-02-26", "1446-09-01"},
		{"2025-03-20", "1446-09-23"},
		{"2025-06-24", "1447-01-01"},
		{"2026-05-24", "1447-12-10"},
	}

	for _, c := range cases {
		var got api.DateResponse
		if err := tr.getData("/api/v1/hijri/convert/"+c.gregorian, &got); err != nil {
			tr.recordError(c.gregorian, err.Error())
			continue
		}
		if got.Formatted != c.hijri {
			tr.recordError(c.gregorian, fmt.Sprintf("got %s, want %s", got.Formatted, c.hijri))
			continue
		}

		msg := fmt.Sprintf("%s -> %s", c.gregorian, c.hijri)
		if got.Observance != nil {
			msg += fmt.Sprintf(" [%s]", got.Observance.Name)
		}
		tr.recordSuccess(msg)
	}
}

func (tr *TestRunner) testYears() {
	tr.printSection("Year Summaries")

	for year := 1440; year <= 1450; year++ {
		var got api.YearResponse
		if err := tr.getData(fmt.Sprintf("/api/v1/hijri/years/%d", year), &got); err != nil {
			tr.recordError(fmt.Sprintf("Year %d", year), err.Error())
			continue
		}

		total := 0
		for _, n := range got.MonthLengths {
			total += n
		}
		if total != got.Length {
			tr.recordError(fmt.Sprintf("Year %d", year), fmt.Sprintf("month lengths sum to %d, year length %d", total, got.Length))
			continue
		}

		kind := "common"
		if got.LeapYear {
			kind = "leap"
		}
		tr.recordSuccess(fmt.Sprintf("%d AH: %s, %d days, starts %s", year, kind, got.Length, got.Start))
	}
}

func (tr *TestRunner) testMonthGrid() {
	tr.printSection("Month Grids")

	for month := 1; month <= 12; month++ {
		path := fmt.Sprintf("/api/v1/hijri/years/1446/months/%d?today=false", month)

		var grid api.GridResponse
		if err := tr.getData(path, &grid); err != nil {
			tr.recordError(fmt.Sprintf("1446/%d", month), err.Error())
			continue
		}

		if len(grid.Cells) != grid.LeadingPadding+grid.MonthLength {
			tr.recordError(fmt.Sprintf("1446/%d", month), fmt.Sprintf("%d cells for padding %d + %d days",
				len(grid.Cells), grid.LeadingPadding, grid.MonthLength))
			continue
		}

		events := 0
		for _, cell := range grid.Cells {
			if cell.Event != nil {
				events++
				if tr.verbose {
					fmt.Printf("    %2d  %s\n", cell.Day, cell.Event.Name)
				}
			}
		}
		tr.recordSuccess(fmt.Sprintf("1446/%02d: %d days, padding %d, %d observances",
			month, grid.MonthLength, grid.LeadingPadding, events))
	}
}

func (tr *TestRunner) testObservances() {
	tr.printSection("Observances")

	var list api.ObservancesResponse
	if err := tr.getData("/api/v1/observances", &list); err != nil {
		tr.recordError("List", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Catalog lists %d observances", list.Count))

	for _, ev := range list.Observances {
		var got observance.Event
		if err := tr.getData(fmt.Sprintf("/api/v1/observances/%d/%d", ev.Month, ev.Day), &got); err != nil {
			tr.recordError(ev.ID, err.Error())
			continue
		}
		if got.ID != ev.ID {
			tr.recordError(ev.ID, fmt.Sprintf("lookup returned %s", got.ID))
			continue
		}
		if tr.verbose {
			tr.recordSuccess(fmt.Sprintf("%02d/%02d %s", ev.Month, ev.Day, ev.Name))
		}
	}
	tr.recordSuccess("Every catalog entry resolves by date")

	resp, err := tr.getRaw("/api/v1/observances/calendar/1447")
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusOK && strings.Contains(string(body), "BEGIN:VCALENDAR") {
		tr.recordSuccess(fmt.Sprintf("ICS export for 1447 (%d events)", strings.Count(string(body), "BEGIN:VEVENT")))
	} else {
		tr.recordError("ICS", fmt.Sprintf("status %d", resp.StatusCode))
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	cases := []struct {
		name   string
		path   string
		status int
	}{
		{"Invalid Gregorian date", "/api/v1/hijri/convert/invalid", http.StatusBadRequest},
		{"Pre-epoch date", "/api/v1/hijri/convert/0600-01-01", http.StatusBadRequest},
		{"Day 30 of a common Dhu al-Hijjah", "/api/v1/hijri/to-gregorian/1446-12-30", http.StatusBadRequest},
		{"Year zero", "/api/v1/hijri/years/0", http.StatusBadRequest},
		{"Month 13", "/api/v1/hijri/years/1446/months/13", http.StatusBadRequest},
		{"Day 31", "/api/v1/observances/1/31", http.StatusBadRequest},
		{"Date without observance", "/api/v1/observances/1/2", http.StatusNotFound},
	}

	for _, c := range cases {
		resp, err := tr.getRaw(c.path)
		if err != nil {
			tr.recordError(c.name, err.Error())
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == c.status {
			tr.recordSuccess(fmt.Sprintf("%s -> %d", c.name, c.status))
		} else {
			tr.recordError(c.name, fmt.Sprintf("status %d, want %d", resp.StatusCode, c.status))
		}
	}
}

func (tr *TestRunner) testRoundTrips() {
	tr.printSection("Round Trips (1447)")

	failures := 0
	for month := 1; month <= 12; month++ {
		d := calendar.HijriDate{Year: 1447, Month: month, Day: 1}

		var forward api.DateResponse
		if err := tr.getData("/api/v1/hijri/to-gregorian/"+d.String(), &forward); err != nil {
			tr.recordError(d.String(), err.Error())
			failures++
			continue
		}

		var back api.DateResponse
		if err := tr.getData("/api/v1/hijri/convert/"+forward.Gregorian, &back); err != nil {
			tr.recordError(d.String(), err.Error())
			failures++
			continue
		}

		if back.Hijri != d {
			tr.recordError(d.String(), fmt.Sprintf("round trip via %s gave %s", forward.Gregorian, back.Formatted))
			failures++
		}
	}

	if failures == 0 {
		tr.recordSuccess("First day of every month survives a round trip")
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	resp, err := tr.getRaw(path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return &apiResp, nil
}

func (tr *TestRunner) getData(path string, target any) error {
	resp, err := tr.get(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp.Data, target)
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, tr.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}
	return tr.client.Do(req)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key sent as X-API-Key")
	verbose := flag.Bool("v", false, "Verbose output (show observance details)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
