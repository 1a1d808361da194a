package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"schedrecur/internal/config"
	"schedrecur/internal/locale"
	appLog "schedrecur/internal/log"
	"schedrecur/internal/pipeline"
	"schedrecur/internal/report"
)

// app carries the state shared by all commands: the parsed flags, the
// effective config and the logger built from them.
type app struct {
	configPath string
	debug      bool

	directory      string
	weeks          int
	minOccurrences int
	tolerance      string
	channels       string
	localeName     string

	format string
	output string
	listen string

	cfg *config.Config
	log appLog.Logger
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedrecur",
		Short: "Find programs that recur at the same weekday and time in archived TV schedules.",
		Long: `schedrecur scans a YYYY/MM/DD.yaml archive of daily TV schedules, groups
programs that air on the same weekday at roughly the same time and prints
them as text, HTML, iCalendar, JSON or a PNG snapshot.

Without a subcommand it behaves like "schedrecur analyze".`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runAnalyze,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	pf.BoolVar(&a.debug, "debug", false, "enable debug logging")
	pf.StringVarP(&a.directory, "directory", "d", "", "root of the schedule archive")
	pf.IntVar(&a.weeks, "weeks", config.DefaultWeeks, "weeks of history to analyze")
	pf.IntVar(&a.minOccurrences, "min-occurrences", config.DefaultMinOccurrences, "distinct dates needed to report an entry")
	pf.StringVar(&a.tolerance, "tolerance", config.DefaultTolerance, "start time drift still treated as the same slot")
	pf.StringVar(&a.channels, "channels", config.DefaultChannels, "channels to analyze: first or all")
	pf.StringVar(&a.localeName, "locale", "", "locale for weekday names (default $LC_ALL or $LANG)")

	analyzeFlags(root, a)
	root.AddCommand(a.analyzeCmd(), a.serveCmd())
	return root
}

func analyzeFlags(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVarP(&a.format, "format", "f", config.DefaultFormat, "output format: text, html, ics, json or png")
	cmd.Flags().StringVarP(&a.output, "output", "o", "", "write to this file instead of stdout (required for png)")
}

func (a *app) analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the archive once and print the report",
		Args:  cobra.NoArgs,
		RunE:  a.runAnalyze,
	}
	analyzeFlags(cmd, a)
	return cmd
}

// setup loads the config file, applies the flags that were set explicitly
// and validates the result.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		if cfg == nil {
			return err
		}
		// The default file could not be written; carry on with defaults.
		a.log.Warn("could not write default config", "path", a.configPath, "err", err.Error())
	}

	flags := cmd.Flags()
	if flags.Changed("directory") {
		cfg.Directory = a.directory
	}
	if flags.Changed("weeks") {
		cfg.Weeks = a.weeks
	}
	if flags.Changed("min-occurrences") {
		cfg.MinOccurrences = a.minOccurrences
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = a.tolerance
	}
	if flags.Changed("channels") {
		cfg.Channels = a.channels
	}
	if flags.Changed("locale") {
		cfg.Locale = a.localeName
	}
	if flags.Changed("format") {
		cfg.Format = a.format
	}
	if flags.Changed("listen") {
		cfg.Listen = a.listen
	}
	if flags.Changed("debug") {
		cfg.Debug = a.debug
	}

	a.log = appLog.NewStderr(cfg.Debug)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Directory == "" {
		return errors.New("no archive directory: pass --directory or set directory in the config")
	}
	a.cfg = cfg

	a.log.Debug("effective config",
		"config", a.configPath,
		"directory", cfg.Directory,
		"weeks", cfg.Weeks,
		"min_occurrences", cfg.MinOccurrences,
		"tolerance", cfg.Tolerance,
		"channels", cfg.Channels,
		"format", cfg.Format,
		"timezone", cfg.Timezone,
	)
	return nil
}

// weekdays resolves the locale for weekday names: config or flag first,
// then $LC_ALL and $LANG.
func (a *app) weekdays() (report.Weekdays, error) {
	name := a.cfg.Locale
	if name == "" {
		name = os.Getenv("LC_ALL")
	}
	if name == "" {
		name = os.Getenv("LANG")
	}
	tag, err := locale.ParsePOSIX(name)
	if err != nil {
		return report.Weekdays{}, err
	}
	return report.Weekdays{Namer: locale.Abbrev{}, Tag: tag}, nil
}

func (a *app) analyze() (pipeline.Result, error) {
	req, err := pipeline.FromConfig(a.cfg, time.Now(), a.log)
	if err != nil {
		return pipeline.Result{}, err
	}
	return pipeline.Run(req)
}

func (a *app) runAnalyze(cmd *cobra.Command, _ []string) error {
	days, err := a.weekdays()
	if err != nil {
		return err
	}
	res, err := a.analyze()
	if err != nil {
		return err
	}
	return render(cmd.Context(), renderRequest{
		format:   a.cfg.Format,
		output:   a.output,
		timezone: a.cfg.Timezone,
		days:     days,
		result:   res,
		stdout:   cmd.OutOrStdout(),
	})
}
