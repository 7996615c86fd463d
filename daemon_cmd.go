package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/daemon"
	"github.com/lexandro/codemap/extract"
	"github.com/lexandro/codemap/index"
	"github.com/lexandro/codemap/project"
	"github.com/lexandro/codemap/server"
	"github.com/lexandro/codemap/tools"
)

const shutdownTimeout = 10 * time.Second

var flagRoots []string

func init() {
	mcpCmd.Flags().StringSliceVar(&flagRoots, "root", nil, "monitor these roots instead of the registry (repeatable; default: registry, or the working directory when it is empty)")
	rootCmd.AddCommand(startCmd, mcpCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the daemon in the foreground",
	Long:  "Monitors every enabled project of the registry until SIGINT or SIGTERM. Registry edits are applied while running. Run it under a process manager to detach it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.paths.Ensure(); err != nil {
			return err
		}
		if pid, err := daemon.ReadPID(env.paths.PIDFile); err == nil && pid != os.Getpid() && daemon.ProcessAlive(pid) {
			return fmt.Errorf("daemon is already running (pid %d)", pid)
		}
		if err := daemon.WritePID(env.paths.PIDFile); err != nil {
			return fmt.Errorf("writing pid file: %w", err)
		}
		defer daemon.RemovePID(env.paths.PIDFile)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := env.daemonLogger()
		logger.Info("starting codemap daemon", "pid", os.Getpid(), "registry", env.paths.RegistryFile)

		d, err := startDaemon(ctx, logger, nil)
		if err != nil {
			return err
		}
		<-ctx.Done()
		logger.Info("shutting down")
		return d.shutdown()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the daemon and serve the index over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.paths.Ensure(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := env.daemonLogger()
		startTime := time.Now()
		logger.Info("starting codemap MCP server", "roots", flagRoots)

		d, err := startDaemon(ctx, logger, flagRoots)
		if err != nil {
			return err
		}
		defer d.shutdown()

		statusHandler := &tools.StatusHandler{Projects: d.supervisor, StartTime: startTime, Logger: logger}
		symbolsHandler := &tools.SymbolsHandler{Symbols: d.symbols, Projects: d.supervisor, Logger: logger}
		outlineHandler := &tools.OutlineHandler{Projects: d.supervisor, Logger: logger}
		filesHandler := &tools.FilesHandler{Projects: d.supervisor, Logger: logger}
		reindexHandler := &tools.ReindexHandler{Projects: d.supervisor, Logger: logger}

		mcpServer := server.Setup(statusHandler, symbolsHandler, outlineHandler, filesHandler, reindexHandler)

		logger.Info("MCP server starting on stdio")
		if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			logger.Error("MCP server error", "error", err)
			return err
		}
		return nil
	},
}

// runningDaemon is a supervisor with the shared collaborators of its coordinators.
type runningDaemon struct {
	supervisor *daemon.Supervisor
	symbols    *index.SymbolIndex
	logger     *slog.Logger
}

// startDaemon starts one coordinator per project. With explicit roots the
// registry is neither read nor watched.
func startDaemon(ctx context.Context, logger *slog.Logger, roots []string) (*runningDaemon, error) {
	symbols, err := index.NewSymbolIndex()
	if err != nil {
		return nil, err
	}
	cache, err := extract.NewCache(env.global.CacheSize)
	if err != nil {
		symbols.Close()
		return nil, err
	}
	supervisor := daemon.NewSupervisor(ctx, project.Options{
		Logger:       logger,
		Cache:        cache,
		Symbols:      symbols,
		SyncInterval: env.global.SyncPeriod(),
	})
	d := &runningDaemon{supervisor: supervisor, symbols: symbols, logger: logger}

	projects, watchRegistry, err := desiredProjects(roots)
	if err != nil {
		symbols.Close()
		return nil, err
	}
	if err := supervisor.Sync(projects); err != nil {
		logger.Error("some projects could not be started", "error", err)
	}

	if watchRegistry {
		go func() {
			if err := daemon.WatchRegistry(ctx, env.paths.RegistryFile, supervisor, daemon.DefaultRegistryDelay, logger); err != nil {
				logger.Error("registry hot-reload disabled", "error", err)
			}
		}()
	}
	logger.Info("daemon started", "projects", len(supervisor.Roots()))
	return d, nil
}

// desiredProjects returns the projects to monitor and whether the registry
// is their source.
func desiredProjects(roots []string) ([]config.Project, bool, error) {
	if len(roots) == 0 {
		registry, err := config.LoadRegistry(env.paths.RegistryFile)
		if err != nil {
			return nil, false, err
		}
		if enabled := registry.Enabled(); len(enabled) > 0 || len(registry.List()) > 0 {
			return enabled, true, nil
		}
		roots = []string{"."}
	}

	projects := make([]config.Project, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, false, fmt.Errorf("resolving %s: %w", root, err)
		}
		projects = append(projects, env.global.NewProject(abs))
	}
	return projects, false, nil
}

func (d *runningDaemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := d.supervisor.Shutdown(ctx)
	if closeErr := d.symbols.Close(); closeErr != nil {
		d.logger.Warn("failed to close symbol index", "error", closeErr)
	}
	if err != nil {
		d.logger.Error("shutdown incomplete", "error", err)
	}
	return err
}
