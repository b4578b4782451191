package cli

import (
	"maps"
	"slices"
	"strings"
)

// counterGroups orders metric names in the summary: crawl progress first,
// then skips and failures, then anything else
var counterGroups = []string{"days.", "races.", "result_rows.", "riders.", "ranks.", "fetch."}

// sortCounterNames returns the counter names in summary order. Names in the
// same group sort alphabetically.
func sortCounterNames(counters map[string]int64) []string {
	names := slices.Collect(maps.Keys(counters))
	slices.SortFunc(names, func(a, b string) int {
		if ga, gb := counterGroup(a), counterGroup(b); ga != gb {
			return ga - gb
		}
		return strings.Compare(a, b)
	})
	return names
}

func counterGroup(name string) int {
	for i, prefix := range counterGroups {
		if strings.HasPrefix(name, prefix) {
			return i
		}
	}
	return len(counterGroups)
}
