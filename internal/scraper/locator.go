package scraper

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/kcycle-crawler/internal/page"
	"github.com/pfrederiksen/kcycle-crawler/internal/race"
)

var (
	// onclick="scrlMoveTo('race_01')" names the race block's element id
	scrollTargetPattern = regexp.MustCompile(`scrlMoveTo\(["']([^"']+)["']`)

	// "광명 3경주 ( 선발 11:50 )"
	raceHeadingPattern = regexp.MustCompile(`^(.+?)\s+(\d+)경주\s*\(\s*(\S+)\s+([\d:]+)\s*\)`)

	buttonNumberPattern = regexp.MustCompile(`(\d+)\s*경주`)
	trailingDigits      = regexp.MustCompile(`(\d+)\D*$`)
)

// RaceButtonSelector matches the carousel buttons of a race card page
const RaceButtonSelector = "div.swiper-slide button"

// RaceButton is one carousel entry pointing at a race block
type RaceButton struct {
	Region     string // text of .region, "" when absent
	Label      string // text of .date, "" when absent
	RaceNumber string // zero-padded number read from Label
	TargetID   string // element id of the race block, "" when onclick has none
}

// Buttons returns the carousel buttons of doc in document order
func Buttons(doc page.Node) []RaceButton {
	nodes := doc.SelectAll(RaceButtonSelector)
	buttons := make([]RaceButton, 0, len(nodes))
	for _, n := range nodes {
		var btn RaceButton
		if region, ok := n.SelectOne(".region"); ok {
			btn.Region = region.Text()
		}
		if label, ok := n.SelectOne(".date"); ok {
			btn.Label = label.Text()
			btn.RaceNumber = buttonRaceNumber(btn.Label)
		}
		if onclick, ok := n.Attr("onclick"); ok {
			if m := scrollTargetPattern.FindStringSubmatch(onclick); m != nil {
				btn.TargetID = m[1]
			}
		}
		buttons = append(buttons, btn)
	}
	return buttons
}

// buttonRaceNumber reads "3경주" style labels, falling back to the last digit run
func buttonRaceNumber(label string) string {
	if m := buttonNumberPattern.FindStringSubmatch(label); m != nil {
		return race.PadTwo(m[1])
	}
	if m := trailingDigits.FindStringSubmatch(label); m != nil {
		return race.PadTwo(m[1])
	}
	return ""
}

// LocateRaceBlock returns the race block of the first button whose region
// label equals region and, when raceNumber is not empty, whose race number
// matches. It fails with a NotFoundError when no button matches or the
// matching button's block is missing.
func LocateRaceBlock(doc page.Node, region, raceNumber string) (page.Node, error) {
	want := race.PadTwo(raceNumber)
	notFound := &NotFoundError{Region: region, RaceNumber: want}

	for _, btn := range Buttons(doc) {
		// Buttons without both labels are decoration, not races
		if btn.Label == "" || btn.Region != region {
			continue
		}
		if want != "" && btn.RaceNumber != want {
			continue
		}
		if btn.TargetID == "" {
			return nil, notFound
		}
		block, ok := page.ByID(doc, "div", btn.TargetID)
		if !ok {
			return nil, notFound
		}
		return block, nil
	}
	return nil, notFound
}

// RaceBlockIDs returns the target id of every carousel button in document order
func RaceBlockIDs(doc page.Node) []string {
	ids := make([]string, 0)
	for _, btn := range Buttons(doc) {
		if btn.TargetID != "" {
			ids = append(ids, btn.TargetID)
		}
	}
	return ids
}

// ParseRaceHeading parses a race block heading such as "광명 3경주 ( 선발 11:50 )".
// When the heading does not match, every field is empty.
func ParseRaceHeading(heading string) race.RaceBlock {
	m := raceHeadingPattern.FindStringSubmatch(strings.TrimSpace(heading))
	if m == nil {
		return race.RaceBlock{}
	}
	return race.RaceBlock{
		Region:     m[1],
		RaceNumber: race.PadTwo(m[2]),
		RaceKind:   m[3],
		StartTime:  m[4],
	}
}

// RaceBlockHeading parses the h2 heading of a race block
func RaceBlockHeading(block page.Node) race.RaceBlock {
	h2, ok := block.SelectOne("h2")
	if !ok {
		return race.RaceBlock{}
	}
	return ParseRaceHeading(h2.Text())
}
