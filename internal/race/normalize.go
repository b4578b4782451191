package race

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// raceLabelPattern splits "광명01" into region and the trailing digit run.
// A region name that itself ends in digits is split at the wrong place.
var raceLabelPattern = regexp.MustCompile(`^(.+?)(\d+)$`)

// NotFinished is the placeholder a result table uses for an empty placement
const NotFinished = "-"

// SplitRaceLabel separates a composite race label into region and race number.
// The race number is zero-padded to two digits. Labels without a trailing
// digit run yield two empty strings.
func SplitRaceLabel(label string) (region, raceNumber string) {
	m := raceLabelPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return "", ""
	}
	return m[1], PadTwo(m[2])
}

// PadTwo left-pads s with zeros to two characters.
// Integers are reformatted first, so "007" becomes "07"; "" stays empty.
func PadTwo(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return fmt.Sprintf("%02d", n)
	}
	if utf8.RuneCountInString(s) < 2 {
		return "0" + s
	}
	return s
}

// canonicalNumber strips leading zeros from integer keys ("03" -> "3")
// and leaves anything else trimmed but unchanged
func canonicalNumber(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(n)
	}
	return s
}

// SplitBibs returns the individual bib numbers of a placement cell.
// Dead heats are slash-joined; empty values and the "-" placeholder are dropped.
func SplitBibs(bibs string) []string {
	return lo.FilterMap(strings.Split(bibs, "/"), func(b string, _ int) (string, bool) {
		b = strings.TrimSpace(b)
		return b, b != "" && b != NotFinished
	})
}

// ExplodeResults reshapes wide result rows into one RankedResult per placed
// rider. Round and race number are zero-padded to the entry dataset's format.
func ExplodeResults(rows []ResultRow) []RankedResult {
	ranked := make([]RankedResult, 0, len(rows)*3)
	for _, row := range rows {
		region, number := SplitRaceLabel(row.RaceLabel)
		for i, place := range row.Places {
			for _, bib := range SplitBibs(place.Bibs) {
				ranked = append(ranked, RankedResult{
					Year:       row.Year,
					Round:      PadTwo(row.Round),
					Day:        row.Day,
					Region:     region,
					RaceNumber: number,
					Bib:        bib,
					Rank:       i + 1,
				})
			}
		}
	}
	return ranked
}

// joinKey is the (year, round, day, region, race number, bib) tuple both
// datasets are normalized to before the rank join
type joinKey struct {
	year       int
	round      string
	day        string
	region     string
	raceNumber string
	bib        string
}

func newJoinKey(year int, round, day, region, raceNumber, bib string) joinKey {
	return joinKey{
		year:       year,
		round:      PadTwo(round),
		day:        canonicalNumber(day),
		region:     strings.TrimSpace(region),
		raceNumber: PadTwo(raceNumber),
		bib:        canonicalNumber(bib),
	}
}

// Annotate left-joins ranked results into the entry dataset. Entries with no
// matching result keep a nil Rank. Entry order is preserved; an entry matching
// several ranked rows is repeated once per match.
func Annotate(entries []EntryRecord, ranked []RankedResult) []AnnotatedEntry {
	ranksByKey := make(map[joinKey][]int, len(ranked))
	for _, r := range ranked {
		key := newJoinKey(r.Year, r.Round, r.Day, r.Region, r.RaceNumber, r.Bib)
		ranksByKey[key] = append(ranksByKey[key], r.Rank)
	}

	annotated := make([]AnnotatedEntry, 0, len(entries))
	for _, e := range entries {
		key := newJoinKey(e.Year, e.Round, e.Day, e.Block.Region, e.Block.RaceNumber, e.Rider.Bib)
		ranks := ranksByKey[key]
		if len(ranks) == 0 {
			annotated = append(annotated, AnnotatedEntry{EntryRecord: e})
			continue
		}
		for _, rank := range ranks {
			annotated = append(annotated, AnnotatedEntry{EntryRecord: e, Rank: lo.ToPtr(rank)})
		}
	}
	return annotated
}
