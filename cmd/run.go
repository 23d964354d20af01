package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrkbench/internal/cli"
	"wrkbench/internal/config"
	"wrkbench/internal/orchestrator"
	"wrkbench/internal/runner"
	"wrkbench/internal/storage"
	"wrkbench/internal/tui/live"
	"wrkbench/internal/tui/prompt"
)

var (
	targetFlags   []string
	endpointFlags []string
	varFlags      []string
	headerFlags   []string
	interactive   bool
	useTUI        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Benchmark every target against every endpoint",
	Args:  cobra.NoArgs,
	RunE:  runBenchmarks,
}

func init() {
	f := runCmd.Flags()
	f.StringArrayVarP(&targetFlags, "target", "T", nil, "target as name=url (repeatable, replaces configured targets)")
	f.StringArrayVarP(&endpointFlags, "endpoint", "e", nil, "endpoint path template (repeatable, replaces configured endpoints)")
	f.StringArrayVar(&varFlags, "var", nil, "template variable as key=value (repeatable)")
	f.StringArrayVarP(&headerFlags, "header", "H", nil, "HTTP header passed to wrk (e.g. \"Key: Value\")")

	f.StringP("duration", "d", "30s", "wrk test duration (e.g. 30s, 2m)")
	f.IntP("threads", "t", 2, "wrk threads")
	f.IntP("connections", "c", 10, "wrk connections")
	f.String("timeout", "", "wrk socket timeout")
	f.StringP("out", "o", "results", "output directory for result files")
	f.Duration("grace", runner.DefaultGrace, "extra time allowed on top of the duration before wrk is killed")
	f.Bool("keep-going", false, "record failed endpoints and keep benchmarking the target")
	f.String("wrk", runner.DefaultExecutable, "wrk executable")
	f.Bool("no-history", false, "do not record the run in the history store")

	f.BoolVarP(&interactive, "interactive", "i", false, "ask for target base URLs before running")
	f.BoolVar(&useTUI, "tui", false, "show live progress in a terminal UI")

	bindFlags(f.Lookup, map[string]string{
		config.KeyDuration:    "duration",
		config.KeyThreads:     "threads",
		config.KeyConnections: "connections",
		config.KeyTimeout:     "timeout",
		config.KeyOutputDir:   "out",
		config.KeyGrace:       "grace",
		config.KeyKeepGoing:   "keep-going",
		config.KeyWrk:         "wrk",
		config.KeyNoHistory:   "no-history",
	})
}

func runBenchmarks(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	plan, err := settings.Plan()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Log lines would tear the TUI apart; hold them until it exits.
	var held bytes.Buffer
	runLogger := logger
	if useTUI {
		runLogger = logger.Output(zerolog.ConsoleWriter{Out: &held, NoColor: true, TimeFormat: time.TimeOnly})
	}

	events := make(orchestrator.Events)
	orch := orchestrator.New(
		runner.NewRunner(settings.Wrk, settings.Grace, runLogger),
		storage.NewResultStore(plan.OutputDir),
		runLogger,
		orchestrator.WithEvents(events),
	)

	type runResult struct {
		out *orchestrator.Outcome
		err error
	}
	done := make(chan runResult, 1)
	go func() {
		out, err := orch.Run(ctx, plan)
		close(events)
		done <- runResult{out, err}
	}()

	stdout := cmd.OutOrStdout()
	if useTUI {
		if _, err := tea.NewProgram(live.NewModel(events, cancel), tea.WithAltScreen()).Run(); err != nil {
			cancel()
			logger.Error().Err(err).Msg("terminal UI failed")
		}
		for range events {
		}
	} else {
		cli.PrintHeader(stdout, plan)
		cli.Follow(stdout, events)
	}

	res := <-done
	if useTUI {
		io.Copy(cmd.ErrOrStderr(), &held)
	}
	cli.PrintSummary(stdout, res.out)

	if !settings.NoHistory && res.out != nil {
		recordHistory(settings, newHistoryItem(plan, res.out, res.err))
	}
	return res.err
}

// resolveSettings merges list flags and the interactive prompt over the
// viper settings.
func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return settings, err
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		if settings.Targets, err = config.ParseTargets(targetFlags); err != nil {
			return settings, err
		}
	}
	if flags.Changed("endpoint") {
		settings.Endpoints = endpointFlags
	}
	if flags.Changed("var") {
		vars, err := config.ParseVars(varFlags)
		if err != nil {
			return settings, err
		}
		for k, v := range vars {
			settings.Vars[k] = v
		}
	}
	if flags.Changed("header") {
		headers, err := config.ParseHeaders(headerFlags)
		if err != nil {
			return settings, err
		}
		for k, v := range headers {
			settings.Headers[k] = v
		}
	}

	if interactive {
		names, urls := promptTargets(settings.Targets)
		res, err := prompt.Run(names, urls, settings.Vars)
		if err != nil {
			return settings, err
		}
		settings.Targets = res.Targets
		for k, v := range res.Vars {
			settings.Vars[k] = v
		}
	}

	return settings, nil
}

// promptTargets lists configured targets first, then the default names.
func promptTargets(configured []orchestrator.Target) ([]string, map[string]string) {
	var names []string
	urls := make(map[string]string)
	for _, t := range configured {
		names = append(names, t.Name)
		urls[t.Name] = t.BaseURL
	}
	for _, name := range config.DefaultTargetNames {
		if _, ok := urls[name]; !ok {
			names = append(names, name)
		}
	}
	return names, urls
}

func newHistoryItem(plan orchestrator.Plan, out *orchestrator.Outcome, runErr error) storage.HistoryItem {
	item := storage.HistoryItem{
		ID:         out.ID,
		Timestamp:  out.StartedAt,
		FinishedAt: out.FinishedAt,
		Endpoints:  plan.Endpoints,
		Config:     plan.Config,
		OutputDir:  plan.OutputDir,
		Summaries:  out.Summaries,
	}
	for _, t := range plan.Targets {
		item.Targets = append(item.Targets, storage.TargetRef{Name: t.Name, URL: t.BaseURL})
	}

	switch {
	case out.Cancelled:
		item.Status = storage.StatusCancelled
	case out.Completed():
		item.Status = storage.StatusCompleted
	default:
		item.Status = storage.StatusPartial
	}

	var joined interface{ Unwrap() []error }
	if errors.As(runErr, &joined) {
		for _, e := range joined.Unwrap() {
			item.Errors = append(item.Errors, e.Error())
		}
	} else if runErr != nil {
		item.Errors = []string{runErr.Error()}
	}
	return item
}

// recordHistory logs failures instead of returning them.
func recordHistory(settings config.Settings, item storage.HistoryItem) {
	store, err := openHistory(settings.HistoryPath)
	if err != nil {
		logger.Warn().Err(err).Msg("history not recorded")
		return
	}
	defer store.Close()

	if err := store.Save(item); err != nil {
		logger.Warn().Err(err).Msg("history not recorded")
		return
	}
	logger.Debug().Str("run_id", item.ID).Str("path", store.Path()).Msg("run recorded")
}

func openHistory(path string) (*storage.Store, error) {
	if path == "" {
		var err error
		if path, err = storage.DefaultPath(); err != nil {
			return nil, fmt.Errorf("locate history: %w", err)
		}
	}
	return storage.NewStore(path)
}
