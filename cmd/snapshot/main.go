package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"insightval/internal/config"
	"insightval/internal/db"
	"insightval/internal/logger"
	gormrepository "insightval/internal/repository/gorm"
	"insightval/internal/scope"
	"insightval/internal/service"
	"insightval/internal/valuation"
)

// app holds the services one command invocation needs.
type app struct {
	log        *zap.Logger
	targets    *service.TargetService
	valuations *service.ValuationService
	methods    *service.MethodService
	closers    []*db.DB
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string
	var envOnly bool

	root := &cobra.Command{
		Use:          "snapshot",
		Short:        "Batch target refresh and valuation snapshots",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", envOr("IV_CONFIG", "config/config.yaml"), "config file")
	root.PersistentFlags().BoolVar(&envOnly, "env-only", envBool("IV_ENV_ONLY"), "read config from IV_* variables only")

	var noRefresh bool
	run := &cobra.Command{
		Use:   "run [date]",
		Short: "Refresh targets, then snapshot every targeted symbol on date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfgPath, envOnly)
			if err != nil {
				return err
			}
			defer a.close()

			if !noRefresh {
				if _, err := a.targets.RefreshAll(cmd.Context()); err != nil {
					return err
				}
			}
			date := ""
			if len(args) == 1 {
				date = args[0]
			}
			summary, err := a.valuations.SnapshotAll(cmd.Context(), date)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
	run.Flags().BoolVar(&noRefresh, "no-refresh", false, "value the stored target sets as they are")

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Re-materialize the targets of every live insight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfgPath, envOnly)
			if err != nil {
				return err
			}
			defer a.close()
			summary, err := a.targets.RefreshAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}

	var method string
	preview := &cobra.Command{
		Use:   "preview <symbol> <date>",
		Short: "Value one symbol and store its snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfgPath, envOnly)
			if err != nil {
				return err
			}
			defer a.close()
			res, err := a.valuations.Preview(cmd.Context(), args[0], args[1], method)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	preview.Flags().StringVar(&method, "method", "", "method key; routed by profile when empty")

	root.AddCommand(run, refresh, preview)
	return root
}

func newApp(cfgPath string, envOnly bool) (*app, error) {
	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{log: log}
	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, dbConn)
	if err := db.AutoMigrate(dbConn); err != nil {
		a.close()
		return nil, err
	}
	marketConn := dbConn
	if strings.TrimSpace(cfg.MarketDB.DSN) != "" {
		marketConn, err = db.Open(cfg.MarketDB.DBConfig)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, marketConn)
	}

	store := gormrepository.New(dbConn.Gorm)
	market := gormrepository.NewMarket(marketConn.Gorm)
	a.targets = &service.TargetService{
		Repo:        store,
		Resolver:    &scope.Resolver{Market: market, Business: store, Logger: logger.Named(log, "scope")},
		Logger:      logger.Named(log, "targets"),
		Concurrency: cfg.Targets.RefreshConcurrency,
	}
	a.methods = &service.MethodService{Repo: store, Logger: logger.Named(log, "methods")}
	if cfg.Valuation.SeedBuiltins {
		if err := a.methods.EnsureBuiltins(context.Background()); err != nil {
			a.close()
			return nil, err
		}
	}
	a.valuations = &service.ValuationService{
		Engine:      valuation.NewEngine(store, market, cfg.Valuation.PriceLookback, logger.Named(log, "valuation")),
		Repo:        store,
		Targets:     store,
		Concurrency: cfg.Valuation.BatchConcurrency,
		Logger:      logger.Named(log, "snapshots"),
	}
	return a, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = db.Close(c)
	}
	_ = a.log.Sync()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(v, "true") || v == "1"
}
