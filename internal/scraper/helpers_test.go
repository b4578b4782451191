package scraper

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/pfrederiksen/kcycle-crawler/internal/fetch"
	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
	"github.com/pfrederiksen/kcycle-crawler/internal/page"
)

// quietLogs discards log output and gives the test its own metrics
func quietLogs(t *testing.T) *logger.Metrics {
	t.Helper()
	logger.SetDefault(logger.New(logger.LevelError, io.Discard))
	metrics := logger.NewMetrics()
	logger.SetDefaultMetrics(metrics)
	t.Cleanup(func() {
		logger.SetDefault(logger.New(logger.LevelInfo, os.Stderr))
		logger.SetDefaultMetrics(logger.NewMetrics())
	})
	return metrics
}

func mustParse(t *testing.T, html string) *page.Element {
	t.Helper()
	doc, err := page.ParseString(html)
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	return doc
}

// fakeFetcher serves canned pages keyed by URL; unknown URLs are 404s
type fakeFetcher struct {
	pages     map[string]string
	fail      map[string]error
	requested []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*page.Element, error) {
	f.requested = append(f.requested, url)
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, &fetch.HTTPStatusError{URL: url, StatusCode: 404}
	}
	return page.ParseString(html)
}

func scheduleSelect(options ...string) string {
	var b strings.Builder
	b.WriteString(`<select name="tmsDayOrd"><option value="">회차 선택</option>`)
	for _, opt := range options {
		fmt.Fprintf(&b, `<option>%s</option>`, opt)
	}
	b.WriteString(`</select>`)
	return b.String()
}

func raceButton(region, label, target string) string {
	return fmt.Sprintf(`<div class="swiper-slide"><button type="button" onclick="scrlMoveTo('%s')">`+
		`<span class="region">%s</span><span class="date">%s</span></button></div>`, target, region, label)
}

// rosterRow renders a roster row with cells data cells valued c0, c1, ...
func rosterRow(name, bib string, cells int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr><th><span class="sign">%s</span><span class="name"><a href="#">%s</a></span>`+
		`<span class="other">05기/41세</span></th>`, bib, name)
	for i := range cells {
		fmt.Fprintf(&b, `<td>c%d</td>`, i)
	}
	b.WriteString(`</tr>`)
	return b.String()
}

func trainingRow(name string) string {
	return fmt.Sprintf(`<tr><th><span class="name"><a href="#">%s</a></span></th>`+
		`<td>12</td><td>%s 동료</td><td>도로</td></tr>`, name, name)
}

func recentRow(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr><th><span class="name"><a href="#">%s</a></span></th>`, name)
	for i := range 15 {
		fmt.Fprintf(&b, `<td>r%d</td>`, i)
	}
	b.WriteString(`</tr>`)
	return b.String()
}

func table(rows ...string) string {
	return `<table class="excel_table"><thead><tr><th>선수</th></tr></thead><tbody>` +
		strings.Join(rows, "") + `</tbody></table>`
}

// raceBlock renders one race with a rider per name, all with full roster rows
func raceBlock(id, heading string, names ...string) string {
	var roster, training, recent []string
	for i, name := range names {
		roster = append(roster, rosterRow(name, fmt.Sprint(i+1), MinRosterCells))
		training = append(training, trainingRow(name))
		recent = append(recent, recentRow(name))
	}
	return fmt.Sprintf(`<div id="%s"><h2>%s</h2>%s%s%s</div>`,
		id, heading, table(roster...), table(training...), table(recent...))
}

func riders(n int) []string {
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("선수%d", i+1)
	}
	return names
}

func cardPage(schedule string, buttons []string, blocks ...string) string {
	return `<html><body>` + schedule + strings.Join(buttons, "") + strings.Join(blocks, "") + `</body></html>`
}

type placed struct{ bib, name string }

func placementCell(riders ...placed) string {
	var b strings.Builder
	b.WriteString(`<td>`)
	for _, r := range riders {
		fmt.Fprintf(&b, `<span class="name"><span class="sign">%s</span><span class="player">%s</span></span>`, r.bib, r.name)
	}
	b.WriteString(`</td>`)
	return b.String()
}

// resultRow renders a finished race with one payout cell per odds pair
func resultRow(label string, places [3][]placed) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<tr><th><span class="mark">%s</span></th>`, label)
	for _, p := range places {
		b.WriteString(placementCell(p...))
	}
	for i := range 6 {
		fmt.Fprintf(&b, `<td><span>%d.1</span><span>%d.2</span></td>`, i, i)
	}
	b.WriteString(`</tr>`)
	return b.String()
}

func resultPage(schedule string, rows ...string) string {
	return `<html><body>` + schedule + `<div class="comDataTable"><table class="excel_table"><tbody>` +
		strings.Join(rows, "") + `</tbody></table></div></body></html>`
}
