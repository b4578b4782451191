package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	minYear = 1994 // first season of Korean cycle racing
	maxYear = 2100
)

// ParseYears parses a --years value: a range ("2016-2020"), a list
// ("2017,2019") or a list of both ("2016-2018,2021"). The result is sorted
// with duplicates removed.
func ParseYears(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("no years given")
	}

	var years []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if start, end, ok := strings.Cut(part, "-"); ok {
			from, err := parseYear(start)
			if err != nil {
				return nil, err
			}
			to, err := parseYear(end)
			if err != nil {
				return nil, err
			}
			if from > to {
				return nil, fmt.Errorf("invalid year range %q: start after end", part)
			}
			for y := from; y <= to; y++ {
				years = append(years, y)
			}
			continue
		}

		y, err := parseYear(part)
		if err != nil {
			return nil, err
		}
		years = append(years, y)
	}

	slices.Sort(years)
	return slices.Compact(years), nil
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	if y < minYear || y > maxYear {
		return 0, fmt.Errorf("year %d out of range %d-%d", y, minYear, maxYear)
	}
	return y, nil
}

// formatYears renders years compactly, collapsing consecutive runs into ranges
func formatYears(years []int) string {
	var parts []string
	for i := 0; i < len(years); {
		j := i
		for j+1 < len(years) && years[j+1] == years[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, fmt.Sprintf("%d-%d", years[i], years[j]))
		} else {
			parts = append(parts, strconv.Itoa(years[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
