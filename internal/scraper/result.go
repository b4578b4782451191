package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pfrederiksen/kcycle-crawler/internal/page"
	"github.com/pfrederiksen/kcycle-crawler/internal/race"
)

const (
	// ResultTableSelector matches the body of a day's result table
	ResultTableSelector = "div.comDataTable table.excel_table tbody"

	// MinResultCells is label + three placements + six payouts
	MinResultCells = 1 + 3 + race.PayoutCount

	payoutSeparator = "|"
)

// ParseResultRow reads one finished race from a result table row.
// Cell 0 holds the race label, cells 1-3 the placements and cells 4-9 the
// payouts. Fewer than MinResultCells cells, or no label, is ErrMalformedRow.
func ParseResultRow(row page.Node, day race.ScheduleEntry) (race.ResultRow, error) {
	cells := row.SelectAll("th, td")
	if len(cells) < MinResultCells {
		return race.ResultRow{}, fmt.Errorf("%w: %d cells, want %d", ErrMalformedRow, len(cells), MinResultCells)
	}

	label, ok := row.SelectOne("th span.mark")
	if !ok {
		return race.ResultRow{}, fmt.Errorf("%w: no race label", ErrMalformedRow)
	}

	result := race.ResultRow{
		Year:      day.Year,
		Round:     day.Round,
		Day:       day.Day,
		RaceLabel: label.Text(),
	}
	for i := range result.Places {
		result.Places[i] = parsePlacement(cells[1+i])
	}
	for i := range result.Payouts {
		result.Payouts[i] = cells[4+i].JoinedText(payoutSeparator)
	}
	return result, nil
}

// parsePlacement collects every rider listed in a placement cell.
// A dead heat lists several riders; the cell of an unfinished place lists none.
func parsePlacement(cell page.Node) race.Placement {
	var bibs, names []string
	for _, entry := range cell.SelectAll(".name") {
		sign, okSign := entry.SelectOne(".sign")
		player, okPlayer := entry.SelectOne(".player")
		if !okSign || !okPlayer {
			continue
		}
		bibs = append(bibs, sign.Text())
		names = append(names, player.Text())
	}
	return race.Placement{
		Bibs:  strings.Join(bibs, "/"),
		Names: strings.Join(names, "/"),
	}
}

// ParseResultTable parses every row of a result table body. Malformed rows
// are left out of the returned slice and reported together in the error, so
// the caller can log each one and keep the rows that parsed.
func ParseResultTable(tbody page.Node, day race.ScheduleEntry) ([]race.ResultRow, error) {
	var (
		rows []race.ResultRow
		errs []error
	)
	for i, tr := range tbody.SelectAll("tr") {
		row, err := ParseResultRow(tr, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, errors.Join(errs...)
}
