package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/kcycle-crawler/internal/fetch"
	"github.com/pfrederiksen/kcycle-crawler/internal/race"
)

const testBase = "https://kcycle.test"

func TestURLs(t *testing.T) {
	s := New(&fakeFetcher{}, WithBaseURL(testBase+"/"))

	require.Equal(t, testBase+"/race/card/decision/2024/07/2", s.CardURL(2024, "7", "2"))
	require.Equal(t, testBase+"/race/result/general/2024/12/1", s.ResultURL(2024, "12", "1"))
	require.Equal(t, DefaultBaseURL+"/race/card/decision/2023/01/1", New(&fakeFetcher{}).CardURL(2023, "01", "1"))
}

func TestCrawlEntriesAllRaces(t *testing.T) {
	metrics := quietLogs(t)

	schedule := scheduleSelect("(2회 1일) 1월 12일", "(1회 1일) 1월 5일")
	s := New(nil, WithBaseURL(testBase))
	f := &fakeFetcher{
		pages: map[string]string{
			s.CardURL(2024, "01", "1"): cardPage(schedule,
				[]string{
					raceButton("광명", "1경주", "race_1"),
					raceButton("광명", "2경주", "race_2"),
					raceButton("광명", "3경주", "race_gone"),
				},
				raceBlock("race_1", "광명 1경주 ( 선발 11:00 )", riders(7)...),
				raceBlock("race_2", "광명 2경주 ( 우수 11:35 )", riders(6)...),
			),
		},
		fail: map[string]error{
			s.CardURL(2024, "02", "1"): &fetch.NetworkError{URL: "x", Err: errors.New("connection reset")},
		},
	}
	s.fetcher = f

	records, err := s.CrawlEntries(context.Background(), 2024, EntryQuery{Mode: ModeAllRaces})
	require.NoError(t, err)
	require.Len(t, records, race.RidersPerRace)

	for i, rec := range records {
		require.Equal(t, "20240105", rec.Date)
		require.Equal(t, "01", rec.Round)
		require.Equal(t, "1", rec.Day)
		require.Equal(t, race.RaceBlock{Region: "광명", RaceNumber: "01", RaceKind: "선발", StartTime: "11:00"}, rec.Block)
		require.Equal(t, riders(7)[i], rec.Rider.Name)
		require.NotNil(t, rec.Training)
		require.NotNil(t, rec.Recent)
	}

	require.Equal(t, int64(1), metrics.Counter("races.collected"))
	require.Equal(t, int64(2), metrics.Counter("races.skipped"))
	require.Equal(t, int64(1), metrics.Counter("days.crawled"))
	require.Equal(t, int64(1), metrics.Counter("days.failed"))

	// index page doubles as round 1 day 1, then day 2 is attempted
	require.Equal(t, []string{
		s.CardURL(2024, "01", "1"),
		s.CardURL(2024, "01", "1"),
		s.CardURL(2024, "02", "1"),
	}, f.requested)
}

func TestCrawlEntriesRegion(t *testing.T) {
	quietLogs(t)

	s := New(nil, WithBaseURL(testBase))
	s.fetcher = &fakeFetcher{pages: map[string]string{
		s.CardURL(2024, "01", "1"): cardPage(scheduleSelect("(1회 1일) 1월 5일"),
			[]string{
				raceButton("창원", "1경주", "race_1"),
				raceButton("광명", "1경주", "race_2"),
				raceButton("광명", "2경주", "race_3"),
			},
			raceBlock("race_1", "창원 1경주 ( 선발 11:00 )", riders(7)...),
			raceBlock("race_2", "광명 1경주 ( 선발 11:35 )", riders(7)...),
			raceBlock("race_3", "광명 2경주 ( 특선 12:10 )", riders(7)...),
		),
	}}

	records, err := s.CrawlEntries(context.Background(), 2024, EntryQuery{Mode: ModeRegion, Region: "광명", RaceNumber: "2"})
	require.NoError(t, err)
	require.Len(t, records, race.RidersPerRace)
	require.Equal(t, "02", records[0].Block.RaceNumber)
	require.Equal(t, "특선", records[0].Block.RaceKind)
	require.Empty(t, records[0].Rider.Cohort)

	records, err = s.CrawlEntries(context.Background(), 2024, EntryQuery{Mode: ModeRegion, Region: "부산"})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestCrawlEntriesStrictKeys(t *testing.T) {
	metrics := quietLogs(t)

	names := riders(7)
	names[6] = names[0]

	s := New(nil, WithBaseURL(testBase), WithStrictKeys(true))
	s.fetcher = &fakeFetcher{pages: map[string]string{
		s.CardURL(2024, "01", "1"): cardPage(scheduleSelect("(1회 1일) 1월 5일"),
			[]string{raceButton("광명", "1경주", "race_1")},
			raceBlock("race_1", "광명 1경주 ( 선발 11:00 )", names...),
		),
	}}

	records, err := s.CrawlEntries(context.Background(), 2024, EntryQuery{Mode: ModeAllRaces})
	require.NoError(t, err)
	require.Empty(t, records)
	require.Equal(t, int64(1), metrics.Counter("races.skipped"))
}

func TestDuplicateNamesWithoutStrictKeys(t *testing.T) {
	quietLogs(t)

	names := riders(7)
	names[6] = names[0]

	s := New(nil, WithBaseURL(testBase))
	day := race.ScheduleEntry{Year: 2024, Round: "01", Day: "1", Date: "20240105"}
	s.fetcher = &fakeFetcher{pages: map[string]string{
		s.CardURL(2024, "01", "1"): cardPage("",
			[]string{raceButton("광명", "1경주", "race_1")},
			raceBlock("race_1", "광명 1경주 ( 선발 11:00 )", names...),
		),
	}}

	// the shared name matches two training and two recent rows for each of
	// its riders, so the merge grows past seven and the race is dropped
	records, err := s.DayEntries(context.Background(), day, EntryQuery{Mode: ModeAllRaces})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestCrawlEntriesNoSchedule(t *testing.T) {
	quietLogs(t)

	s := New(nil, WithBaseURL(testBase))
	s.fetcher = &fakeFetcher{pages: map[string]string{
		s.CardURL(2024, "01", "1"): `<html><body><p>자료가 없습니다</p></body></html>`,
	}}

	_, err := s.CrawlEntries(context.Background(), 2024, EntryQuery{Mode: ModeAllRaces})
	require.ErrorIs(t, err, ErrNoSchedule)
}

func TestCrawlEntriesScheduleUnavailable(t *testing.T) {
	quietLogs(t)

	s := New(&fakeFetcher{}, WithBaseURL(testBase))
	_, err := s.CrawlEntries(context.Background(), 2024, EntryQuery{Mode: ModeAllRaces})

	var statusErr *fetch.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 404, statusErr.StatusCode)
}

func TestCrawlEntriesCancelled(t *testing.T) {
	quietLogs(t)

	s := New(nil, WithBaseURL(testBase))
	s.fetcher = &fakeFetcher{pages: map[string]string{
		s.CardURL(2024, "01", "1"): cardPage(scheduleSelect("(1회 1일) 1월 5일"), nil),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CrawlEntries(ctx, 2024, EntryQuery{Mode: ModeAllRaces})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCrawlResults(t *testing.T) {
	metrics := quietLogs(t)

	s := New(nil, WithBaseURL(testBase))
	schedule := scheduleSelect("(2회 1일) 1월 12일", "(1회 2일) 1월 6일", "(1회 1일) 1월 5일")
	s.fetcher = &fakeFetcher{pages: map[string]string{
		s.ResultURL(2024, "01", "1"): resultPage(schedule,
			resultRow("광명1", [3][]placed{{{"3", "가"}}, {{"5", "나"}}, {{"1", "다"}}}),
			`<tr><th><span class="mark">광명2</span></th><td>취소</td></tr>`,
			resultRow("광명3", [3][]placed{{{"2", "라"}}, {{"4", "마"}}, {{"6", "바"}}}),
		),
		s.ResultURL(2024, "01", "2"): `<html><body><p>경주 없음</p></body></html>`,
		s.ResultURL(2024, "02", "1"): resultPage("",
			resultRow("창원1", [3][]placed{{{"7", "사"}}, {{"1", "아"}}, {{"3", "자"}}}),
		),
	}}

	rows, err := s.CrawlResults(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "광명1", rows[0].RaceLabel)
	require.Equal(t, "광명3", rows[1].RaceLabel)
	require.Equal(t, "창원1", rows[2].RaceLabel)
	require.Equal(t, "02", rows[2].Round)

	require.Equal(t, int64(3), metrics.Counter("result_rows.collected"))
	require.Equal(t, int64(1), metrics.Counter("result_rows.skipped"))
	require.Equal(t, int64(1), metrics.Counter("days.failed"))
	require.Equal(t, int64(2), metrics.Counter("days.crawled"))
}
