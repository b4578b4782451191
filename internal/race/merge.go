package race

import (
	"fmt"

	"github.com/samber/lo"
)

// DuplicateKeyError reports a rider name that appears more than once in a roster
type DuplicateKeyError struct {
	Name  string
	Count int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate rider name %q (%d rows)", e.Name, e.Count)
}

// MergeEntries left-joins the roster with the training log and the recent
// performance table on rider name and prepends meta to every record.
//
// Roster order is preserved. A name matching several rows on the right side
// yields one record per combination, so duplicate names multiply rows.
func MergeEntries(meta EntryMeta, riders []RiderRow, training []TrainingRow, recent []RecentPerformanceRow) []EntryRecord {
	trainingByName := lo.GroupBy(training, func(t TrainingRow) string { return t.Name })
	recentByName := lo.GroupBy(recent, func(r RecentPerformanceRow) string { return r.Name })

	records := make([]EntryRecord, 0, len(riders))
	for _, rider := range riders {
		for _, t := range matches(trainingByName[rider.Name]) {
			for _, r := range matches(recentByName[rider.Name]) {
				records = append(records, EntryRecord{
					EntryMeta: meta,
					Rider:     rider,
					Training:  t,
					Recent:    r,
				})
			}
		}
	}
	return records
}

// matches turns the right-hand rows for one key into join candidates.
// No rows still yields a single nil candidate (left join).
func matches[T any](rows []T) []*T {
	if len(rows) == 0 {
		return []*T{nil}
	}
	out := make([]*T, len(rows))
	for i := range rows {
		row := rows[i]
		out[i] = &row
	}
	return out
}

// CheckUniqueNames returns a DuplicateKeyError for the first rider name that
// occurs more than once in the roster
func CheckUniqueNames(riders []RiderRow) error {
	counts := lo.CountValuesBy(riders, func(r RiderRow) string { return r.Name })
	for _, r := range riders {
		if n := counts[r.Name]; n > 1 {
			return &DuplicateKeyError{Name: r.Name, Count: n}
		}
	}
	return nil
}
