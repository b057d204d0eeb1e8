// Package observance holds the catalog of recurring Islamic observances
// keyed by Hijri (month, day).
package observance

import (
	"errors"
	"fmt"
)

// Category classifies an observance.
type Category string

const (
	CategoryObligatory    Category = "obligatory"
	CategoryRecommended   Category = "recommended"
	CategoryHistorical    Category = "historical"
	CategoryCommemorative Category = "commemorative"
)

// ValidCategories returns all valid observance categories.
func ValidCategories() []Category {
	return []Category{
		CategoryObligatory,
		CategoryRecommended,
		CategoryHistorical,
		CategoryCommemorative,
	}
}

// IsValid checks if a category is valid.
func (c Category) IsValid() bool {
	for _, valid := range ValidCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// Event is a single catalog entry. Entries are immutable once a Registry
// has been built from them.
type Event struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Month       int      `json:"month" yaml:"month"` // 1..12
	Day         int      `json:"day" yaml:"day"`     // 1..30
	Category    Category `json:"category" yaml:"category"`
	DisplayIcon string   `json:"display_icon" yaml:"display_icon"`
	ColorToken  string   `json:"color_token" yaml:"color_token"`
}

// Validate checks the fields of a single event.
func (e Event) Validate() error {
	var errs []error

	if e.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if e.Name == "" {
		errs = append(errs, fmt.Errorf("%s: name is required", e.ID))
	}
	if e.Month < 1 || e.Month > 12 {
		errs = append(errs, fmt.Errorf("%s: month must be between 1 and 12, got %d", e.ID, e.Month))
	}
	if e.Day < 1 || e.Day > 30 {
		errs = append(errs, fmt.Errorf("%s: day must be between 1 and 30, got %d", e.ID, e.Day))
	}
	if !e.Category.IsValid() {
		errs = append(errs, fmt.Errorf("%s: invalid category %q", e.ID, e.Category))
	}

	return errors.Join(errs...)
}

type monthDay struct {
	month, day int
}

// Registry is a validated, read-only view over a catalog. It is safe for
// concurrent use because nothing mutates it after NewRegistry returns.
type Registry struct {
	events []Event
	byDate map[monthDay]int
}

// NewRegistry validates the catalog and builds a registry from it.
//
// Every entry must pass Validate, ids must be unique, and at most one
// entry may exist per (month, day). All violations are reported together.
func NewRegistry(events []Event) (*Registry, error) {
	var errs []error

	reg := &Registry{
		events: make([]Event, 0, len(events)),
		byDate: make(map[monthDay]int, len(events)),
	}
	ids := make(map[string]bool, len(events))

	for _, e := range events {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if ids[e.ID] {
			errs = append(errs, fmt.Errorf("duplicate id %q", e.ID))
			continue
		}
		key := monthDay{e.Month, e.Day}
		if idx, ok := reg.byDate[key]; ok {
			errs = append(errs, fmt.Errorf("%s: date %d/%d already used by %q",
				e.ID, e.Month, e.Day, reg.events[idx].ID))
			continue
		}

		ids[e.ID] = true
		reg.byDate[key] = len(reg.events)
		reg.events = append(reg.events, e)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid observance catalog: %w", errors.Join(errs...))
	}

	return reg, nil
}

// Lookup returns the observance on the given Hijri month and day.
func (r *Registry) Lookup(month, day int) (Event, bool) {
	idx, ok := r.byDate[monthDay{month, day}]
	if !ok {
		return Event{}, false
	}
	return r.events[idx], true
}

// ListForMonth returns every observance in month, in catalog order.
// The result is never nil.
func (r *Registry) ListForMonth(month int) []Event {
	out := []Event{}
	for _, e := range r.events {
		if e.Month == month {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of the catalog in insertion order.
func (r *Registry) All() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int {
	return len(r.events)
}
