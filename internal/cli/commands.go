package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/kcycle-crawler/internal/dataset"
	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
	"github.com/pfrederiksen/kcycle-crawler/internal/race"
	"github.com/pfrederiksen/kcycle-crawler/internal/scraper"
)

func newEntriesCmd(a *app) *cobra.Command {
	var (
		years      string
		mode       string
		region     string
		raceNumber string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Crawl race cards into the entry dataset",
		Example: `  kcycle entries --years 2016-2020
  kcycle entries --years 2017,2019 --pause 1
  kcycle entries --years 2024 --mode region --region 광명 --race-number 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yearList, err := ParseYears(years)
			if err != nil {
				return err
			}
			query := scraper.EntryQuery{
				Mode:       scraper.Mode(strings.ToLower(mode)),
				Region:     region,
				RaceNumber: raceNumber,
			}
			if query.Mode != scraper.ModeAllRaces && query.Mode != scraper.ModeRegion {
				return fmt.Errorf("invalid mode: %s (must be 'all' or 'region')", mode)
			}

			started := time.Now()
			s := a.newScraper()
			records := crawlYears(cmd.Context(), yearList, func(ctx context.Context, year int) ([]race.EntryRecord, error) {
				return s.CrawlEntries(ctx, year, query)
			})

			return a.finish(cmd, newRunSummary("entries", yearList, len(records), started), output,
				func(path string) error { return a.store.WriteEntries(path, records) })
		},
	}

	cmd.Flags().StringVar(&years, "years", "", "Years to crawl, e.g. 2016-2020 or 2017,2019 (required)")
	cmd.Flags().StringVar(&mode, "mode", string(scraper.ModeAllRaces), "Races to extract: all or region")
	cmd.Flags().StringVar(&region, "region", scraper.DefaultRegion, "Region label of the race to extract in region mode")
	cmd.Flags().StringVar(&raceNumber, "race-number", "", "Race number to extract in region mode (default: first race of the region)")
	cmd.Flags().StringVar(&output, "output", dataset.EntriesFile, "Entry dataset file, relative to the data directory")
	mustMarkRequired(cmd, "years")

	return cmd
}

func newResultsCmd(a *app) *cobra.Command {
	var (
		years  string
		output string
	)

	cmd := &cobra.Command{
		Use:     "results",
		Short:   "Crawl race results into the result dataset",
		Example: `  kcycle results --years 2016-2020`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yearList, err := ParseYears(years)
			if err != nil {
				return err
			}

			started := time.Now()
			s := a.newScraper()
			rows := crawlYears(cmd.Context(), yearList, s.CrawlResults)

			return a.finish(cmd, newRunSummary("results", yearList, len(rows), started), output,
				func(path string) error { return a.store.WriteResults(path, rows) })
		},
	}

	cmd.Flags().StringVar(&years, "years", "", "Years to crawl, e.g. 2016-2020 or 2017,2019 (required)")
	cmd.Flags().StringVar(&output, "output", dataset.ResultsFile, "Result dataset file, relative to the data directory")
	mustMarkRequired(cmd, "years")

	return cmd
}

func newAnnotateCmd(a *app) *cobra.Command {
	var (
		entriesFile string
		resultsFile string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Attach finishing ranks from the result dataset to the entry dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			started := time.Now()

			entries, err := a.store.ReadEntries(entriesFile)
			if err != nil {
				return fmt.Errorf("loading entries: %w", err)
			}
			results, err := a.store.ReadResults(resultsFile)
			if err != nil {
				return fmt.Errorf("loading results: %w", err)
			}

			ranked := race.ExplodeResults(results)
			annotated := race.Annotate(entries, ranked)

			metrics := logger.DefaultMetrics()
			metrics.AddCounter("ranks.exploded", int64(len(ranked)))
			metrics.AddCounter("ranks.matched", int64(lo.CountBy(annotated, func(e race.AnnotatedEntry) bool {
				return e.Rank != nil
			})))
			logger.Info("Annotated entries", logger.Fields{
				"entries": len(entries),
				"results": len(results),
				"ranked":  len(ranked),
			})

			return a.finish(cmd, newRunSummary("annotate", nil, len(annotated), started), output,
				func(path string) error { return a.store.WriteAnnotated(path, annotated) })
		},
	}

	cmd.Flags().StringVar(&entriesFile, "entries", dataset.EntriesFile, "Entry dataset file, relative to the data directory")
	cmd.Flags().StringVar(&resultsFile, "results", dataset.ResultsFile, "Result dataset file, relative to the data directory")
	cmd.Flags().StringVar(&output, "output", dataset.AnnotatedFile, "Annotated dataset file, relative to the data directory")

	return cmd
}

// mustMarkRequired marks a flag defined by the caller as required; an error
// means the flag name is misspelled
func mustMarkRequired(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		panic(fmt.Sprintf("marking --%s required: %v", name, err))
	}
}

// crawlYears runs crawl for each year in order. A failed year is logged and
// skipped; cancellation stops the loop and keeps what was collected.
func crawlYears[T any](ctx context.Context, years []int, crawl func(context.Context, int) ([]T, error)) []T {
	var all []T
	for _, year := range years {
		got, err := crawl(ctx, year)
		all = append(all, got...)

		switch {
		case err == nil:
			logger.Info("Crawled year", logger.Fields{"year": year, "records": len(got)})
			logger.IncrCounter("years.crawled")
		case ctx.Err() != nil:
			logger.Warn("Crawl interrupted, keeping collected records", logger.Fields{"year": year, "records": len(all)})
			return all
		case errors.Is(err, scraper.ErrNoSchedule):
			logger.Warn("No race days listed", logger.Fields{"year": year})
			logger.IncrCounter("years.failed")
		default:
			logger.Error("Skipping year", logger.Fields{"year": year}, err)
			logger.IncrCounter("years.failed")
		}
	}
	return all
}

// finish writes the dataset when there is something to write and prints
// the run summary. An empty run returns ErrNothingProduced.
func (a *app) finish(cmd *cobra.Command, summary *RunSummary, output string, write func(string) error) error {
	if summary.Records == 0 {
		logger.Warn("No records collected, nothing written", logger.Fields{"command": summary.Command})
		if err := WriteSummary(cmd.OutOrStdout(), summary, OutputFormat(a.format)); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return ErrNothingProduced
	}

	if err := write(output); err != nil {
		return fmt.Errorf("saving dataset: %w", err)
	}
	summary.Output = a.store.Path(output)
	logger.SetGauge("dataset.records", float64(summary.Records))
	logger.Info("Saved dataset", logger.Fields{"path": summary.Output, "records": summary.Records})

	if err := WriteSummary(cmd.OutOrStdout(), summary, OutputFormat(a.format)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
