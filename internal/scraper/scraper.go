package scraper

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/pfrederiksen/kcycle-crawler/internal/fetch"
	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
	"github.com/pfrederiksen/kcycle-crawler/internal/page"
	"github.com/pfrederiksen/kcycle-crawler/internal/race"
)

const (
	DefaultBaseURL = "https://www.kcycle.or.kr"
	DefaultRegion  = "광명"

	cardPath   = "/race/card/decision"
	resultPath = "/race/result/general"
)

// Scraper walks a year's race days and extracts entries or results.
// Requests go through the Fetcher one at a time.
type Scraper struct {
	fetcher    fetch.Fetcher
	baseURL    string
	strictKeys bool
}

// Option configures a Scraper
type Option func(*Scraper)

// WithBaseURL points the scraper at another host, e.g. a test server
func WithBaseURL(baseURL string) Option {
	return func(s *Scraper) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithStrictKeys makes races with duplicate rider names fail instead of
// multiplying rows in the merge
func WithStrictKeys(strict bool) Option {
	return func(s *Scraper) {
		s.strictKeys = strict
	}
}

// New creates a Scraper that fetches pages through f
func New(f fetch.Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher: f,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CardURL returns the race card page of one day
func (s *Scraper) CardURL(year int, round, day string) string {
	return fmt.Sprintf("%s%s/%d/%s/%s", s.baseURL, cardPath, year, race.PadTwo(round), day)
}

// ResultURL returns the result page of one day
func (s *Scraper) ResultURL(year int, round, day string) string {
	return fmt.Sprintf("%s%s/%d/%s/%s", s.baseURL, resultPath, year, race.PadTwo(round), day)
}

// EntryQuery selects which races of a day are extracted
type EntryQuery struct {
	Mode       Mode
	Region     string // ModeRegion only
	RaceNumber string // ModeRegion only, "" for the first race of the region
}

func dayFields(day race.ScheduleEntry) logger.Fields {
	return logger.Fields{
		"year":  day.Year,
		"round": day.Round,
		"day":   day.Day,
		"date":  day.Date,
	}
}

// schedule fetches the first page of a year and returns its race days.
// Any day page carries the full selection control, so round 01 day 1 is used.
func (s *Scraper) schedule(ctx context.Context, indexURL string, year int) (iter.Seq[race.ScheduleEntry], error) {
	doc, err := s.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule for %d: %w", year, err)
	}
	return Schedule(doc, year), nil
}

// CrawlEntries extracts the entry records of every race day of year.
// A day that fails is logged and skipped; the returned error is non-nil only
// when the schedule itself is unavailable or ctx ends.
func (s *Scraper) CrawlEntries(ctx context.Context, year int, q EntryQuery) ([]race.EntryRecord, error) {
	days, err := s.schedule(ctx, s.CardURL(year, "01", "1"), year)
	if err != nil {
		return nil, err
	}

	var (
		records []race.EntryRecord
		count   int
	)
	for day := range days {
		count++
		if err := ctx.Err(); err != nil {
			return records, err
		}

		dayRecords, err := s.DayEntries(ctx, day, q)
		if err != nil {
			logger.Error("Skipping race day", dayFields(day), err)
			logger.IncrCounter("days.failed")
			continue
		}

		fields := dayFields(day)
		fields["records"] = len(dayRecords)
		logger.Info("Crawled race card", fields)
		logger.IncrCounter("days.crawled")
		records = append(records, dayRecords...)
	}

	if count == 0 {
		return nil, fmt.Errorf("%d: %w", year, ErrNoSchedule)
	}
	return records, nil
}

// DayEntries extracts the entry records of one day's race card.
// In ModeAllRaces a race that cannot be extracted is logged and skipped; in
// ModeRegion the single located race's error is returned.
func (s *Scraper) DayEntries(ctx context.Context, day race.ScheduleEntry, q EntryQuery) ([]race.EntryRecord, error) {
	doc, err := s.fetcher.Fetch(ctx, s.CardURL(day.Year, day.Round, day.Day))
	if err != nil {
		return nil, err
	}

	if q.Mode == ModeRegion {
		region := q.Region
		if region == "" {
			region = DefaultRegion
		}
		block, err := LocateRaceBlock(doc, region, q.RaceNumber)
		if err != nil {
			logger.IncrCounter("races.skipped")
			return nil, err
		}
		records, err := s.raceEntries(block, day, ModeRegion)
		if err != nil {
			logger.IncrCounter("races.skipped")
			return nil, err
		}
		logger.IncrCounter("races.collected")
		return records, nil
	}

	var records []race.EntryRecord
	for _, id := range RaceBlockIDs(doc) {
		fields := dayFields(day)
		fields["block_id"] = id

		block, ok := page.ByID(doc, "div", id)
		if !ok {
			logger.Warn("Race block missing from page", fields)
			logger.IncrCounter("races.skipped")
			continue
		}

		raceRecords, err := s.raceEntries(block, day, ModeAllRaces)
		if err != nil {
			logger.Error("Skipping race", fields, err)
			logger.IncrCounter("races.skipped")
			continue
		}
		logger.IncrCounter("races.collected")
		records = append(records, raceRecords...)
	}
	return records, nil
}

// raceEntries extracts and merges one race block. The race is rejected
// unless exactly race.RidersPerRace records come out of the merge.
func (s *Scraper) raceEntries(block page.Node, day race.ScheduleEntry, mode Mode) ([]race.EntryRecord, error) {
	heading := RaceBlockHeading(block)

	tables, err := ExtractEntryTables(block, mode)
	if err != nil {
		return nil, fmt.Errorf("race %s%s: %w", heading.Region, heading.RaceNumber, err)
	}

	if s.strictKeys {
		if err := race.CheckUniqueNames(tables.Riders); err != nil {
			return nil, fmt.Errorf("race %s%s: %w", heading.Region, heading.RaceNumber, err)
		}
	}

	meta := race.EntryMeta{
		Date:  day.Date,
		Year:  day.Year,
		Round: day.Round,
		Day:   day.Day,
		Block: heading,
	}
	records := race.MergeEntries(meta, tables.Riders, tables.Training, tables.Recent)
	if len(records) != race.RidersPerRace {
		return nil, fmt.Errorf("race %s%s: %w: %d riders, want %d",
			heading.Region, heading.RaceNumber, ErrRiderCount, len(records), race.RidersPerRace)
	}
	return records, nil
}

// CrawlResults extracts the result rows of every race day of year.
// Failed days and malformed rows are logged and skipped.
func (s *Scraper) CrawlResults(ctx context.Context, year int) ([]race.ResultRow, error) {
	days, err := s.schedule(ctx, s.ResultURL(year, "01", "1"), year)
	if err != nil {
		return nil, err
	}

	var (
		results []race.ResultRow
		count   int
	)
	for day := range days {
		count++
		if err := ctx.Err(); err != nil {
			return results, err
		}

		rows, err := s.DayResults(ctx, day)
		switch {
		case errors.Is(err, ErrMalformedRow):
			for _, rowErr := range unwrapJoined(err) {
				logger.Warn("Skipping result row", logger.Fields{
					"year": day.Year, "round": day.Round, "day": day.Day, "reason": rowErr.Error(),
				})
				logger.IncrCounter("result_rows.skipped")
			}
		case errors.Is(err, ErrNoResultTable):
			logger.Warn("No result table on page", dayFields(day))
			logger.IncrCounter("days.failed")
			continue
		case err != nil:
			logger.Error("Skipping result day", dayFields(day), err)
			logger.IncrCounter("days.failed")
			continue
		}

		fields := dayFields(day)
		fields["rows"] = len(rows)
		logger.Info("Crawled race results", fields)
		logger.IncrCounter("days.crawled")
		logger.DefaultMetrics().AddCounter("result_rows.collected", int64(len(rows)))
		results = append(results, rows...)
	}

	if count == 0 {
		return nil, fmt.Errorf("%d: %w", year, ErrNoSchedule)
	}
	return results, nil
}

// DayResults extracts the result rows of one day. Rows that parsed are
// returned even when the error reports malformed siblings.
func (s *Scraper) DayResults(ctx context.Context, day race.ScheduleEntry) ([]race.ResultRow, error) {
	doc, err := s.fetcher.Fetch(ctx, s.ResultURL(day.Year, day.Round, day.Day))
	if err != nil {
		return nil, err
	}

	tbody, ok := doc.SelectOne(ResultTableSelector)
	if !ok {
		return nil, ErrNoResultTable
	}
	return ParseResultTable(tbody, day)
}
