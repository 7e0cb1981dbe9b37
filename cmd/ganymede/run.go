package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/audit"
	"mercator-hq/ganymede/pkg/audit/retention"
	"mercator-hq/ganymede/pkg/audit/storage"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/gate"
	"mercator-hq/ganymede/pkg/gate/cache"
	"mercator-hq/ganymede/pkg/policy"
	"mercator-hq/ganymede/pkg/server"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	decisionMode  string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede gate service",
	Long: `Start the Ganymede gate service with the specified configuration.

The service loads the policy identity from the configured source, starts
the verdict cache and compliance gate, and serves the admin HTTP surface
(health probes, metrics, policy identity, audit queries).

The standalone service answers decisions with a fixed verdict selected by
--decision-mode; embed the gate package in-process to plug in a real rule
engine.

Examples:
  # Start with default config
  ganymede run

  # Start with custom config
  ganymede run --config /etc/ganymede/config.yaml

  # Override admin listen address
  ganymede run --listen 0.0.0.0:9090

  # Validate config without starting
  ganymede run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override admin listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.decisionMode, "decision-mode", "allow", "standalone decision verdict: allow, deny, needs_review")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the service")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	decide, err := staticDecision(runFlags.decisionMode)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Ganymede v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	// Telemetry
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initializing tracing: %w", err))
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	// Policy identity
	source, err := buildPolicySource(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	initial, err := source.Load(ctx)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("loading initial policy identity: %w", err))
	}
	holder := policy.NewHolder(initial)
	fmt.Printf("✓ Policy identity loaded (%s)\n", initial.Short())

	watcher := buildPolicyWatcher(cfg, source, holder, logger)

	// Verdict cache
	cacheOpts := []cache.Option[gate.Verdict]{
		cache.WithShards[gate.Verdict](cfg.Cache.Shards),
	}
	if collector != nil {
		cacheOpts = append(cacheOpts, cache.WithEvictionHook[gate.Verdict](collector.Cache().RecordEviction))
	}
	verdictCache := cache.New[gate.Verdict](cfg.Cache.Capacity, cacheOpts...)
	if collector != nil {
		collector.Cache().SetCapacity(verdictCache.Capacity())
		collector.Cache().ObserveSize(verdictCache.Len)
	}

	// Audit trail
	var (
		auditStore    audit.Storage
		auditRecorder *audit.Recorder
		pruner        *retention.Pruner
	)
	if cfg.Audit.Enabled {
		auditStore, err = buildAuditStorage(cfg)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer auditStore.Close()

		auditRecorder = audit.NewRecorder(auditStore, cfg.Audit.BufferSize, logger)
		defer auditRecorder.Close()

		if cfg.Audit.Retention.PruneSchedule != "" {
			pruner, err = retention.NewPruner(auditStore, &cfg.Audit.Retention, logger)
			if err != nil {
				return cli.NewCommandError("run", err)
			}
			if err := pruner.Start(); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
			}
		}
		fmt.Printf("✓ Audit trail initialized (%s)\n", cfg.Audit.Backend)
	}

	// Compliance gate
	gateCfg := gate.Config{
		Holder:             holder,
		Decide:             decide,
		Cache:              verdictCache,
		EntryTTL:           cfg.Cache.EntryTTL,
		ComputationTimeout: cfg.Gate.ComputationTimeout,
		Logger:             logger,
		Tracer:             tracer.Tracer(),
	}
	if collector != nil {
		gateCfg.Metrics = collector.Gate()
	}
	if auditRecorder != nil {
		gateCfg.Observer = auditRecorder.Observe
	}
	g, err := gate.New(gateCfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	// Rotation wiring: invalidate tagged entries eagerly and count rotations.
	holder.Subscribe(func(old, next policy.Identity) {
		removed := verdictCache.InvalidateAll(next.String())
		logger.Info("policy rotated",
			"old", old.Short(),
			"new", next.Short(),
			"invalidated", removed,
		)
		if collector != nil {
			collector.Policy().RecordRotation()
		}
	})

	if watcher != nil {
		go func() {
			if err := watcher.Watch(ctx); err != nil && ctx.Err() == nil {
				logger.Error("policy watcher stopped", "error", err)
			}
		}()
	}

	fmt.Println("✓ Compliance gate ready")

	// Admin server
	if !cfg.Server.Enabled {
		logger.Info("admin server disabled, waiting for shutdown signal")
		<-ctx.Done()
		fmt.Println("\n✓ Service stopped")
		return nil
	}

	deps := server.Dependencies{
		Holder:       holder,
		Gate:         g,
		AuditStorage: auditStore,
	}
	if collector != nil {
		deps.MetricsHandler = collector.Handler()
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
	}
	srv, err := server.NewServer(&cfg.Server, deps, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println()
	fmt.Printf("✓ Admin server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Println("✓ Service stopped")
	return nil
}

// policyWatcher is implemented by both the file and git watchers.
type policyWatcher interface {
	Watch(ctx context.Context) error
}

// buildPolicySource assembles the identity source for the configured mode.
func buildPolicySource(cfg *config.Config) (policy.Source, error) {
	switch cfg.Policy.Mode {
	case "static":
		return policy.StaticSource(cfg.Policy.Identity), nil
	case "file":
		return policy.NewFileSource(cfg.Policy.FilePath), nil
	case "git":
		source, err := policy.NewGitSource(&cfg.Policy.Git)
		if err != nil {
			return nil, fmt.Errorf("creating git policy source: %w", err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unsupported policy mode: %s", cfg.Policy.Mode)
	}
}

// buildPolicyWatcher returns a watcher for the source, or nil when
// watching is disabled or the mode has nothing to watch.
func buildPolicyWatcher(cfg *config.Config, source policy.Source, holder *policy.Holder, logger *slog.Logger) policyWatcher {
	if !cfg.Policy.Watch {
		return nil
	}
	switch s := source.(type) {
	case *policy.FileSource:
		return policy.NewFileWatcher(s, holder, logger)
	case *policy.GitSource:
		return policy.NewGitWatcher(s, holder, logger)
	default:
		return nil
	}
}

// buildAuditStorage creates the configured audit backend.
func buildAuditStorage(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		store, err := storage.NewSQLiteStorage(&cfg.Audit.SQLite)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite audit storage: %w", err)
		}
		return store, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}

// staticDecision returns the fixed decision function for standalone mode.
func staticDecision(mode string) (gate.DecisionFunc, error) {
	var verdict gate.Verdict
	switch mode {
	case "allow":
		verdict = gate.Allow()
	case "deny":
		verdict = gate.Deny("denied by static decision mode")
	case "needs_review":
		verdict = gate.NeedsReview("flagged by static decision mode")
	default:
		return nil, cli.NewConfigError("decision-mode", fmt.Sprintf("unsupported mode %q", mode))
	}
	return func(context.Context, gate.Fingerprint, policy.Identity) (gate.Verdict, error) {
		return verdict, nil
	}, nil
}
