package scraper

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"

	"github.com/pfrederiksen/kcycle-crawler/internal/page"
	"github.com/pfrederiksen/kcycle-crawler/internal/race"
)

// Option labels look like "(7회 2일) 2월 17일"
var scheduleOptionPattern = regexp.MustCompile(`\((\d+)회 (\d+)일\)\s+(\d{1,2})월\s*(\d{1,2})일`)

// ScheduleSelector matches the round/day selection options
const ScheduleSelector = `select[name="tmsDayOrd"] option`

// ParseScheduleOption parses one option label. Placeholder options such as
// "select a day" do not match and return false.
func ParseScheduleOption(text string, year int) (race.ScheduleEntry, bool) {
	m := scheduleOptionPattern.FindStringSubmatch(text)
	if m == nil {
		return race.ScheduleEntry{}, false
	}

	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])

	return race.ScheduleEntry{
		Year:  year,
		Round: race.PadTwo(m[1]),
		Day:   m[2],
		Date:  fmt.Sprintf("%d%02d%02d", year, month, day),
	}, true
}

// Schedule yields the race days listed in doc's selection control.
// The page lists the most recent day first; days are yielded in reverse page
// order, which is chronological. Options are parsed lazily as they are yielded.
func Schedule(doc page.Node, year int) iter.Seq[race.ScheduleEntry] {
	options := doc.SelectAll(ScheduleSelector)
	return func(yield func(race.ScheduleEntry) bool) {
		for i := len(options) - 1; i >= 0; i-- {
			entry, ok := ParseScheduleOption(options[i].Text(), year)
			if !ok {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}
