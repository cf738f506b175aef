package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"screener/internal/config"
	"screener/internal/evaluate"
	"screener/internal/notify"
	"screener/internal/oracle"
	"screener/internal/pipeline"
	"screener/internal/reconcile"
	"screener/internal/retrieve"
	"screener/internal/ui/live"
	"screener/internal/workbook"
)

// Collaborator factories; tests replace them with in-memory fakes.
var (
	openWorkbook = workbook.Open
	newOracle    = func(ctx context.Context, controls config.InferenceControls) (oracle.Oracle, error) {
		return oracle.FromConfig(ctx, controls, nil)
	}
	newRetriever = retrieve.FromConfig
	newNotifier  = notify.FromConfig
	startLiveUI  = live.Start
)

const liveLogFile = "screener.log"

type runOptions struct {
	batch   int
	delay   time.Duration
	uiMode  string
	noColor bool
}

func (a *app) runCommand() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every unprocessed input row",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.batch, "batch", 0, "stop after this many candidates (0 = no limit)")
	cmd.Flags().DurationVar(&opts.delay, "delay", 2*time.Second, "pause between candidates")
	cmd.Flags().StringVar(&opts.uiMode, "ui", "auto", "progress output: auto|live|plain")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

func (a *app) run(ctx context.Context, opts runOptions) error {
	if opts.batch < 0 {
		return usagef("--batch must not be negative")
	}
	if opts.delay < 0 {
		return usagef("--delay must not be negative")
	}
	decision, err := resolveUIMode(opts.uiMode, a.verbose, a.stdout)
	if err != nil {
		return usageError{err: err}
	}
	if decision.warning != "" {
		fmt.Fprintln(a.stderr, decision.warning)
	}

	path := a.configPath()
	fallbackLog := ""
	if decision.useLive {
		fallbackLog = filepath.Join(filepath.Dir(path), liveLogFile)
	}
	logger, err := a.setupLogger(fallbackLog)
	if err != nil {
		return err
	}
	store := config.Load(path, logger)
	cfg := store.Config()
	if err := config.Validate(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	book, err := openWorkbook(ctx, cfg.Sheet)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer closeQuietly(logger, "workbook", book.Close)

	model, err := newOracle(ctx, cfg.Inference)
	if err != nil {
		return fmt.Errorf("configure oracle: %w", err)
	}
	retriever, closeRetriever, err := newRetriever(cfg, logger)
	if err != nil {
		return fmt.Errorf("configure retrieval: %w", err)
	}
	defer closeQuietly(logger, "retriever", closeRetriever)
	notifier, err := newNotifier(cfg.CRM, logger)
	if err != nil {
		return fmt.Errorf("configure crm: %w", err)
	}

	var (
		observer   pipeline.Observer
		controller *live.Controller
	)
	if decision.useLive {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		ctx = runCtx
		controller = startLiveUI(a.stdout, live.Options{NoColor: opts.noColor, OnInterrupt: cancel})
		observer = controller
	} else {
		observer = pipeline.NewPlainObserver(a.stdout, opts.noColor)
	}

	runner, err := pipeline.New(pipeline.Dependencies{
		Config:     cfg,
		Reconciler: reconcile.New(book, cfg, logger),
		Retriever:  retriever,
		Evaluator:  evaluate.New(cfg, model, nil, logger),
		Notifier:   notifier,
		Observer:   observer,
		Logger:     logger,
	})
	if err != nil {
		controller.Close()
		controller.Wait()
		return err
	}
	summary, runErr := runner.Run(ctx, pipeline.Options{
		BatchSize: opts.batch,
		Delay:     opts.delay,
		Workbook:  workbookLabel(cfg.Sheet),
	})
	if controller != nil {
		controller.Wait()
		fmt.Fprintln(a.stdout, pipeline.FormatSummary(summary))
	}
	return runErr
}

func workbookLabel(controls config.SheetControls) string {
	switch controls.Backend {
	case config.BackendDuckDB:
		return "duckdb " + controls.DatabasePath
	case config.BackendGoogle:
		return "google sheet " + os.Getenv(workbook.EnvSheetID)
	default:
		return controls.Backend
	}
}

func closeQuietly(logger *zap.Logger, what string, closeFn func() error) {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		logger.Warn("close failed", zap.String("component", what), zap.Error(err))
	}
}
