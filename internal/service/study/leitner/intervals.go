// Package leitner implements the five-box Leitner scheduler, the due-set
// selector and the training-session state machine. Everything here is pure:
// no IO, no logging, no global state.
package leitner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// IntervalTable maps box numbers to review intervals in whole days.
// Index i holds the interval for box i+1.
type IntervalTable [domain.MaxBox]int

// DefaultIntervals is the stock Leitner table: 1, 3, 7, 14 and 30 days.
var DefaultIntervals = IntervalTable{1, 3, 7, 14, 30}

const day = 24 * time.Hour

// NewIntervalTable builds a table from a list of day counts. The list must
// hold exactly MaxBox positive, strictly increasing values.
func NewIntervalTable(days []int) (IntervalTable, error) {
	var t IntervalTable
	if len(days) != len(t) {
		return t, fmt.Errorf("interval table: need %d values, got %d", len(t), len(days))
	}
	for i, d := range days {
		if d <= 0 {
			return t, fmt.Errorf("interval table: box %d: interval must be > 0 (got %d)", i+1, d)
		}
		if i > 0 && d <= days[i-1] {
			return t, fmt.Errorf("interval table: box %d: %d must be greater than %d", i+1, d, days[i-1])
		}
		t[i] = d
	}
	return t, nil
}

// ParseIntervalTable parses a comma-separated list of day counts (e.g. "1,3,7,14,30").
func ParseIntervalTable(raw string) (IntervalTable, error) {
	parts := strings.Split(raw, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil {
			return IntervalTable{}, fmt.Errorf("interval table: invalid value %q: %w", p, err)
		}
		days = append(days, d)
	}
	return NewIntervalTable(days)
}

// DaysForBox returns the interval of box in days.
func (t IntervalTable) DaysForBox(box int) (int, error) {
	if !domain.ValidBox(box) {
		return 0, &domain.OutOfRangeError{Field: "box", Value: box, Min: domain.MinBox, Max: domain.MaxBox}
	}
	return t[box-1], nil
}

// IntervalForBox returns the review interval of box.
func (t IntervalTable) IntervalForBox(box int) (time.Duration, error) {
	days, err := t.DaysForBox(box)
	if err != nil {
		return 0, err
	}
	return time.Duration(days) * day, nil
}

// String renders the table in the same form ParseIntervalTable accepts.
func (t IntervalTable) String() string {
	parts := make([]string, len(t))
	for i, d := range t {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// IntervalForBox returns the interval of box from DefaultIntervals.
func IntervalForBox(box int) (time.Duration, error) {
	return DefaultIntervals.IntervalForBox(box)
}
