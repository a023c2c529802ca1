// Package history stores and queries past Mark Six draws
package history

import (
	"errors"
	"slices"
	"time"

	"github.com/bububa/marksix-agents/marksix"
)

// ErrNotAvailable returned by a Source when no history has been stored yet
var ErrNotAvailable = errors.New("history not available")

// Record is a single historical draw
type Record struct {
	// Draw draw id as published, e.g. 24/001, may be empty
	Draw string
	Date time.Time
	// Numbers main numbers in drawn column order
	Numbers [marksix.NumbersCount]int
	// Extra the special number, nil when unknown
	Extra *int
}

// FormatDate returns the record date as YYYY-MM-DD
func (r Record) FormatDate() string {
	return r.Date.Format(marksix.DateLayout)
}

// SortNewestFirst orders records by date descending, keeping the input order for equal dates
func SortNewestFirst(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		return b.Date.Compare(a.Date)
	})
}
