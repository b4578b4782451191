package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/kcycle-crawler/internal/config"
	"github.com/pfrederiksen/kcycle-crawler/internal/dataset"
	"github.com/pfrederiksen/kcycle-crawler/internal/fetch"
	"github.com/pfrederiksen/kcycle-crawler/internal/logger"
	"github.com/pfrederiksen/kcycle-crawler/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// ErrNothingProduced is returned when a command has no records to write
var ErrNothingProduced = errors.New("no records produced")

// app carries the state shared by the root command and its subcommands
type app struct {
	v       *viper.Viper
	cfgFile string
	format  string

	cfg   config.Config
	store *dataset.Store
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	cmd := &cobra.Command{
		Use:   "kcycle",
		Short: "Crawl kcycle.or.kr race cards and results into CSV datasets",
		Long: `A crawler for the Korean cycle racing site kcycle.or.kr.

Collects the pre-race entry cards and the race results for whole seasons,
writes them as CSV datasets and annotates every entry with its finishing rank.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.kcycle.yml)")
	pf.StringVar(&a.format, "format", "text", "Summary format: text or json")
	pf.String(config.KeyBaseURL, scraper.DefaultBaseURL, "Site base URL")
	pf.String(config.KeyUserAgent, fetch.DefaultUserAgent, "User-Agent header sent with every request")
	pf.Duration(config.KeyTimeout, fetch.DefaultTimeout, "Timeout of a single request")
	pf.Int(config.KeyRetries, config.DefaultRetries, "Retries after a network error or 5xx response")
	pf.Duration(config.KeyRetryWait, time.Second, "Initial wait between retries")
	pf.Float64(config.KeyPause, config.DefaultPause, "Seconds to wait between requests")
	pf.String(config.KeyLogLevel, "info", "Log level: debug, info, warn or error")
	pf.Bool(config.KeyStrictKeys, false, "Skip races whose roster repeats a rider name")
	pf.String(config.KeyDataDir, dataset.DefaultDir, "Directory for datasets")

	cmd.AddCommand(newEntriesCmd(a), newResultsCmd(a), newAnnotateCmd(a))
	return cmd
}

// setup loads the configuration and prepares logging and storage for a command
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.initConfig(cmd); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	format := OutputFormat(strings.ToLower(a.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.format)
	}
	a.format = string(format)

	logger.SetDefault(logger.New(cfg.LogLevel, cmd.ErrOrStderr()))
	logger.SetDefaultMetrics(logger.NewMetrics())

	store, err := dataset.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	a.cfg = cfg
	a.store = store
	return nil
}

// initConfig reads the config file and environment and binds them to the
// flags of cmd
func (a *app) initConfig(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(config.ConfigName)
	}

	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", a.v.ConfigFileUsed())
	}

	bindFlags(cmd, a.v)
	return a.v.BindPFlags(cmd.Flags())
}

// bindFlags binds each cobra flag to its viper key and applies config and
// environment values to flags not set on the command line
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// --base-url reads KCYCLE_BASE_URL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", config.EnvPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not bind env var %s: %v\n", f.Name, err)
			}
		}
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not set flag value for %s: %v\n", f.Name, err)
			}
		}
	})
}

// newScraper builds a scraper whose requests are paced by the configured pause
func (a *app) newScraper() *scraper.Scraper {
	client := fetch.New(a.cfg.FetchOptions())
	return scraper.New(fetch.NewThrottle(client, a.cfg.Pause),
		scraper.WithBaseURL(a.cfg.BaseURL),
		scraper.WithStrictKeys(a.cfg.StrictKeys),
	)
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logger.Sync()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
