package scraper

import (
	"fmt"
	"regexp"

	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
	"github.com/pfrederiksen/kcycle-crawler/internal/page"
	"github.com/pfrederiksen/kcycle-crawler/internal/race"
)

// Mode selects how much of a race card is extracted
type Mode string

const (
	// ModeAllRaces extracts every race block and the cohort/age label
	ModeAllRaces Mode = "all"
	// ModeRegion extracts one race block located by region label
	ModeRegion Mode = "region"
)

const (
	// EntryTableSelector matches the roster, training and recent tables of a race block
	EntryTableSelector = "table.excel_table"
	entryTableCount    = 3

	// MinRosterCells is the number of data cells a present rider's roster row has
	MinRosterCells = 14
	trainingCells  = 3
)

// "01기/51세" is the rider's training-school class and age
var cohortAgePattern = regexp.MustCompile(`(\d+)기/(\d+)세`)

// EntryTables holds the three tables of one race block
type EntryTables struct {
	Riders   []race.RiderRow
	Training []race.TrainingRow
	Recent   []race.RecentPerformanceRow
}

// ExtractEntryTables reads the roster, training log and recent performance
// tables of a race block. Rows without a rider name link are skipped; roster
// rows with fewer than MinRosterCells cells belong to scratched riders and are
// dropped. A block with fewer than three tables is ErrMalformedPage.
func ExtractEntryTables(block page.Node, mode Mode) (EntryTables, error) {
	tables := block.SelectAll(EntryTableSelector)
	if len(tables) < entryTableCount {
		return EntryTables{}, fmt.Errorf("%w: found %d entry tables, want %d", ErrMalformedPage, len(tables), entryTableCount)
	}

	var out EntryTables
	for _, row := range tables[0].SelectAll("tbody tr") {
		if rider, ok := parseRosterRow(row, mode); ok {
			out.Riders = append(out.Riders, rider)
		}
	}
	for _, row := range tables[1].SelectAll("tbody tr") {
		name, cells, ok := namedRow(row)
		if !ok {
			continue
		}
		cells = padCells(cells, trainingCells)
		out.Training = append(out.Training, race.TrainingRow{
			Name:             name,
			TrainingDays:     cells[0],
			TrainingPartners: cells[1],
			TrainingNotes:    cells[2],
		})
	}
	for _, row := range tables[2].SelectAll("tbody tr") {
		name, cells, ok := namedRow(row)
		if !ok {
			continue
		}
		rec := race.RecentPerformanceRow{Name: name}
		copy(rec.Fields[:], cells)
		out.Recent = append(out.Recent, rec)
	}

	return out, nil
}

// namedRow returns the rider name and the stripped text of every td.
// Header and blank rows have no ".name a" link.
func namedRow(row page.Node) (string, []string, bool) {
	link, ok := row.SelectOne(".name a")
	if !ok {
		return "", nil, false
	}
	tds := row.SelectAll("td")
	cells := make([]string, len(tds))
	for i, td := range tds {
		cells[i] = td.Text()
	}
	return link.Text(), cells, true
}

// padCells extends cells with empty strings up to n
func padCells(cells []string, n int) []string {
	for len(cells) < n {
		cells = append(cells, "")
	}
	return cells
}

func parseRosterRow(row page.Node, mode Mode) (race.RiderRow, bool) {
	name, t, ok := namedRow(row)
	if !ok {
		return race.RiderRow{}, false
	}
	if len(t) < MinRosterCells {
		logger.Debug("Dropping scratched rider", logger.Fields{"name": name, "cells": len(t)})
		logger.IncrCounter("riders.scratched")
		return race.RiderRow{}, false
	}

	rider := race.RiderRow{
		Name:         name,
		GearRatio:    t[0],
		Time200m:     t[1],
		TrainingSite: t[2],
		WinRate:      t[3],
		TopTwoRate:   t[4],
		TopThreeRate: t[5],
		PlacedStarts: t[6],
		Lead:         t[7],
		Overtake:     t[8],
		Chase:        t[9],
		Mark:         t[10],
		GradeChange:  t[11],
		Recent3Score: t[12],
		Recent3Rank:  t[13],
	}
	if sign, ok := row.SelectOne(".sign"); ok {
		rider.Bib = sign.Text()
	}
	if mode == ModeAllRaces {
		if other, ok := row.SelectOne(".other"); ok {
			if m := cohortAgePattern.FindStringSubmatch(other.Text()); m != nil {
				rider.Cohort, rider.Age = m[1], m[2]
			}
		}
	}
	return rider, true
}
