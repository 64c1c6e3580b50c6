// Package filter narrows a dataset to the slice the dashboard is looking at
// and checks records before they reach the KPI engine.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// All matches every value of an attribute.
const All = "All"

// DefaultRangeDays is the look-back used when no explicit range is given.
const DefaultRangeDays = 365

var ErrInvalidDate = errors.New("invalid date")

// Criteria selects assets by attribute and child records by date.
// Empty strings or All match everything; zero times leave that end open.
type Criteria struct {
	AssetType   string    `json:"asset_type"`
	Location    string    `json:"location"`
	Criticality string    `json:"criticality"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
}

// HasDateRange reports whether either date bound is set.
func (c Criteria) HasDateRange() bool {
	return !c.From.IsZero() || !c.To.IsZero()
}

func (c Criteria) inRange(t time.Time) bool {
	if !c.From.IsZero() && t.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && t.After(c.To) {
		return false
	}
	return true
}

func matches(want, got string) bool {
	return want == "" || want == All || want == got
}

func (c Criteria) matchAsset(a models.Asset) bool {
	return matches(c.AssetType, a.AssetType) &&
		matches(c.Location, a.Location) &&
		matches(c.Criticality, string(a.CriticalityLevel))
}

// Apply returns the records matching c. Child records survive only when their
// asset does. Work orders are dated by completion, so open ones drop out once
// a date range is set. The input is not modified.
func Apply(data models.Dataset, c Criteria) models.Dataset {
	out := models.Dataset{
		Assets:           []models.Asset{},
		Failures:         []models.Failure{},
		WorkOrders:       []models.WorkOrder{},
		MaintenanceCosts: []models.MaintenanceCost{},
	}

	keep := make(map[string]struct{}, len(data.Assets))
	for _, a := range data.Assets {
		if c.matchAsset(a) {
			out.Assets = append(out.Assets, a)
			keep[a.AssetID] = struct{}{}
		}
	}
	kept := func(id string) bool {
		_, ok := keep[id]
		return ok
	}

	for _, f := range data.Failures {
		if kept(f.AssetID) && c.inRange(f.FailureDate) {
			out.Failures = append(out.Failures, f)
		}
	}
	for _, w := range data.WorkOrders {
		if !kept(w.AssetID) {
			continue
		}
		if c.HasDateRange() && (w.CompletionDate == nil || !c.inRange(*w.CompletionDate)) {
			continue
		}
		out.WorkOrders = append(out.WorkOrders, w)
	}
	for _, mc := range data.MaintenanceCosts {
		if kept(mc.AssetID) && c.inRange(mc.Date) {
			out.MaintenanceCosts = append(out.MaintenanceCosts, mc)
		}
	}
	return out
}

// DefaultRange spans the year up to the latest work order completion.
func DefaultRange(data models.Dataset) (from, to time.Time, ok bool) {
	for _, w := range data.WorkOrders {
		if w.CompletionDate != nil && w.CompletionDate.After(to) {
			to = *w.CompletionDate
		}
	}
	if to.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	return to.AddDate(0, 0, -DefaultRangeDays), to, true
}

// ParseDate accepts RFC3339 timestamps or YYYY-MM-DD dates. When endOfDay is
// set, a bare date is moved to the last instant of that day.
func ParseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected RFC3339 or YYYY-MM-DD", ErrInvalidDate, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// FilterOptions lists the distinct values available to each attribute picker.
type FilterOptions struct {
	AssetTypes        []string `json:"asset_types"`
	Locations         []string `json:"locations"`
	CriticalityLevels []string `json:"criticality_levels"`
}

// Options collects distinct asset attribute values in first-seen order.
func Options(data models.Dataset) FilterOptions {
	opts := FilterOptions{AssetTypes: []string{}, Locations: []string{}, CriticalityLevels: []string{}}
	seen := map[string]map[string]bool{"type": {}, "loc": {}, "crit": {}}
	add := func(kind, v string, dst *[]string) {
		if v == "" || seen[kind][v] {
			return
		}
		seen[kind][v] = true
		*dst = append(*dst, v)
	}
	for _, a := range data.Assets {
		add("type", a.AssetType, &opts.AssetTypes)
		add("loc", a.Location, &opts.Locations)
		add("crit", string(a.CriticalityLevel), &opts.CriticalityLevels)
	}
	return opts
}
