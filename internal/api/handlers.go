package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/hijri-api/internal/calendar"
	"github.com/zapponejosh/hijri-api/internal/config"
	"github.com/zapponejosh/hijri-api/internal/database"
	"github.com/zapponejosh/hijri-api/internal/export"
	"github.com/zapponejosh/hijri-api/internal/logger"
	"github.com/zapponejosh/hijri-api/internal/observance"
)

// maxYear bounds Hijri years accepted over HTTP.
const maxYear = 9999

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db       *database.DB
	registry *observance.Registry
	grids    *calendar.GridBuilder
	cfg      *config.Config
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance serving the given catalog.
func NewHandlers(db *database.DB, registry *observance.Registry, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:       db,
		registry: registry,
		grids:    calendar.NewGridBuilder(registry),
		cfg:      cfg,
		logger:   logger,
		loc:      cfg.Location(),
		now:      time.Now,
	}
}

// DateResponse describes one day in both calendars.
type DateResponse struct {
	Gregorian   string             `json:"gregorian"`
	Hijri       calendar.HijriDate `json:"hijri"`
	Formatted   string             `json:"formatted"`
	Weekday     int                `json:"weekday"`
	WeekdayName string             `json:"weekday_name"`
	LeapYear    bool               `json:"leap_year"`
	MonthLength int                `json:"month_length"`
	Observance  *observance.Event  `json:"observance,omitempty"`
}

// YearResponse summarizes a Hijri year.
type YearResponse struct {
	Year          int    `json:"year"`
	CyclePosition int    `json:"cycle_position"`
	LeapYear      bool   `json:"leap_year"`
	Length        int    `json:"length"`
	MonthLengths  []int  `json:"month_lengths"`
	Start         string `json:"start"`
}

// MonthRef points at a neighbouring month grid.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// GridResponse is a month grid plus navigation links.
type GridResponse struct {
	calendar.MonthGrid
	Prev MonthRef `json:"prev"`
	Next MonthRef `json:"next"`
}

// WeekdayResponse carries the weekday of a Hijri date.
type WeekdayResponse struct {
	Hijri       calendar.HijriDate `json:"hijri"`
	Weekday     int                `json:"weekday"`
	WeekdayName string             `json:"weekday_name"`
}

// ObservancesResponse lists catalog entries, optionally for one month.
type ObservancesResponse struct {
	Month       int                `json:"month,omitempty"`
	Count       int                `json:"count"`
	Observances []observance.Event `json:"observances"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		logger.FromContext(ctx, h.logger).Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]any{
		"status":      "healthy",
		"observances": h.registry.Len(),
	})
}

// GetToday handles GET /api/v1/hijri/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	today := h.today()
	WriteSuccess(w, h.describe(today, calendar.FromGregorian(today)))
}

// ConvertDate handles GET /api/v1/hijri/convert/{date}
func (h *Handlers) ConvertDate(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")

	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}
	if date.Before(calendar.EpochGregorian) {
		WriteBadRequest(w, fmt.Sprintf("Date %s is before the Hijri epoch (%s)", dateStr, calendar.FormatDate(calendar.EpochGregorian)))
		return
	}

	hijri := calendar.FromGregorian(date)
	logger.FromContext(r.Context(), h.logger).Debug("converted date",
		slog.String("gregorian", dateStr),
		slog.String("hijri", hijri.String()))

	WriteSuccess(w, h.describe(date, hijri))
}

// ToGregorian handles GET /api/v1/hijri/to-gregorian/{hijri}
func (h *Handlers) ToGregorian(w http.ResponseWriter, r *http.Request) {
	hijri, ok := h.hijriParam(w, r)
	if !ok {
		return
	}

	WriteSuccess(w, h.describe(calendar.ToGregorian(hijri), hijri))
}

// GetWeekday handles GET /api/v1/hijri/weekday/{hijri}
func (h *Handlers) GetWeekday(w http.ResponseWriter, r *http.Request) {
	hijri, ok := h.hijriParam(w, r)
	if !ok {
		return
	}

	wd := calendar.DayOfWeek(hijri.Year, hijri.Month, hijri.Day)
	WriteSuccess(w, WeekdayResponse{
		Hijri:       hijri,
		Weekday:     int(wd),
		WeekdayName: wd.String(),
	})
}

// GetYear handles GET /api/v1/hijri/years/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := parseBounded(chi.URLParam(r, "year"), "year", 1, maxYear)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	lengths := make([]int, 12)
	for m := 1; m <= 12; m++ {
		lengths[m-1] = calendar.MonthLength(year, m)
	}

	WriteSuccess(w, YearResponse{
		Year:          year,
		CyclePosition: calendar.CyclePosition(year),
		LeapYear:      calendar.IsLeapYear(year),
		Length:        calendar.YearLength(year),
		MonthLengths:  lengths,
		Start:         calendar.FormatDate(calendar.ToGregorian(calendar.HijriDate{Year: year, Month: 1, Day: 1})),
	})
}

// GetMonthGrid handles GET /api/v1/hijri/years/{year}/months/{month}
// Pass ?today=false to skip highlighting the current day.
func (h *Handlers) GetMonthGrid(w http.ResponseWriter, r *http.Request) {
	year, err := parseBounded(chi.URLParam(r, "year"), "year", 1, maxYear)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	month, err := parseBounded(chi.URLParam(r, "month"), "month", 1, 12)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var today *calendar.HijriDate
	if r.URL.Query().Get("today") != "false" {
		t := calendar.FromGregorian(h.today())
		today = &t
	}

	grid := h.grids.Month(year, month, today)
	prevYear, prevMonth := grid.Prev()
	nextYear, nextMonth := grid.Next()

	WriteSuccess(w, GridResponse{
		MonthGrid: grid,
		Prev:      MonthRef{Year: prevYear, Month: prevMonth},
		Next:      MonthRef{Year: nextYear, Month: nextMonth},
	})
}

// ListObservances handles GET /api/v1/observances?month=N
func (h *Handlers) ListObservances(w http.ResponseWriter, r *http.Request) {
	monthStr := r.URL.Query().Get("month")
	if monthStr == "" {
		all := h.registry.All()
		WriteSuccess(w, ObservancesResponse{Count: len(all), Observances: all})
		return
	}

	month, err := parseBounded(monthStr, "month", 1, 12)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	events := h.registry.ListForMonth(month)
	WriteSuccess(w, ObservancesResponse{Month: month, Count: len(events), Observances: events})
}

// GetObservance handles GET /api/v1/observances/{month}/{day}
func (h *Handlers) GetObservance(w http.ResponseWriter, r *http.Request) {
	month, err := parseBounded(chi.URLParam(r, "month"), "month", 1, 12)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	day, err := parseBounded(chi.URLParam(r, "day"), "day", 1, 30)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	ev, ok := h.registry.Lookup(month, day)
	if !ok {
		WriteNotFound(w, fmt.Sprintf("No observance on %d/%d", month, day))
		return
	}

	WriteSuccess(w, ev)
}

// GetObservanceCalendar handles GET /api/v1/observances/calendar/{year}
// and returns the year's observances as an iCalendar file. A trailing
// ".ics" on the year is accepted.
func (h *Handlers) GetObservanceCalendar(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(chi.URLParam(r, "year"), ".ics")
	year, err := parseBounded(raw, "year", 1, maxYear)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	occurrences := calendar.ObservancesInYear(h.registry, year)
	if err := export.WriteICS(&buf, year, occurrences, h.now().UTC()); err != nil {
		logger.FromContext(r.Context(), h.logger).Error("failed to render calendar",
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to render calendar")
		return
	}

	WriteAttachment(w, "text/calendar; charset=utf-8", fmt.Sprintf("observances-%d.ics", year), buf.Bytes())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// today returns midnight of the current civil day in the configured zone,
// expressed as a UTC calendar date.
func (h *Handlers) today() time.Time {
	now := h.now().In(h.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (h *Handlers) describe(greg time.Time, hijri calendar.HijriDate) DateResponse {
	wd := calendar.DayOfWeek(hijri.Year, hijri.Month, hijri.Day)
	resp := DateResponse{
		Gregorian:   calendar.FormatDate(greg),
		Hijri:       hijri,
		Formatted:   hijri.String(),
		Weekday:     int(wd),
		WeekdayName: wd.String(),
		LeapYear:    calendar.IsLeapYear(hijri.Year),
		MonthLength: calendar.MonthLength(hijri.Year, hijri.Month),
	}
	if ev, ok := h.registry.Lookup(hijri.Month, hijri.Day); ok {
		resp.Observance = &ev
	}
	return resp
}

// hijriParam parses the {hijri} path segment, writing a 400 on failure.
func (h *Handlers) hijriParam(w http.ResponseWriter, r *http.Request) (calendar.HijriDate, bool) {
	raw := chi.URLParam(r, "hijri")

	date, err := calendar.ParseHijriDate(raw)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid Hijri date: %s. Use YYYY-MM-DD", raw))
		return calendar.HijriDate{}, false
	}
	if date.Year > maxYear {
		WriteBadRequest(w, fmt.Sprintf("year must be between 1 and %d", maxYear))
		return calendar.HijriDate{}, false
	}

	return date, true
}

func parseBounded(raw, name string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}
