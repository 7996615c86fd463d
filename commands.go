package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/daemon"
	"github.com/lexandro/codemap/project"
	"github.com/lexandro/codemap/register"
)

var (
	flagInclude   []string
	flagExclude   []string
	flagDelay     float64
	flagOutput    string
	flagNoConfigs bool
	flagForce     bool
)

func init() {
	addCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "only index paths matching these globs (repeatable)")
	addCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "extra exclude globs on top of the global ignore patterns (repeatable)")
	addCmd.Flags().Float64Var(&flagDelay, "delay", -1, "seconds of quiet before changes are applied (default: from config)")
	addCmd.Flags().StringVar(&flagOutput, "output", "", "document file name relative to the root (default: from config)")
	addCmd.Flags().BoolVar(&flagNoConfigs, "no-config-files", false, "leave configuration files out of the document")
	initCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing configuration file")

	rootCmd.AddCommand(addCmd, removeCmd, listCmd, initCmd, renderCmd, statusCmd, stopCmd, cleanupCmd, registerCmd)
}

// rootArg returns the absolute project root named by args, or the working directory.
func rootArg(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}
	return abs, nil
}

var addCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Start monitoring a project (default: current directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootArg(args)
		if err != nil {
			return err
		}

		cfg := env.global.NewProject(root)
		cfg.Include = flagInclude
		cfg.Exclude = append(cfg.Exclude, flagExclude...)
		if flagDelay >= 0 {
			cfg.UpdateDelay = flagDelay
		}
		if flagOutput != "" {
			cfg.OutputFile = flagOutput
		}
		cfg.IncludeConfigFiles = !flagNoConfigs
		if err := cfg.Validate(); err != nil {
			return err
		}

		registry, err := config.LoadRegistry(env.paths.RegistryFile)
		if err != nil {
			return err
		}
		if !registry.Add(cfg) {
			return fmt.Errorf("%w: %s", daemon.ErrAlreadyMonitored, cfg.Path)
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (document: %s)\n", cfg.Path, cfg.OutputPath())
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [path]",
	Short: "Stop monitoring a project (default: current directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootArg(args)
		if err != nil {
			return err
		}
		registry, err := config.LoadRegistry(env.paths.RegistryFile)
		if err != nil {
			return err
		}
		if !registry.Remove(root) {
			return fmt.Errorf("%w: %s", daemon.ErrUnknownProject, root)
		}
		if err := registry.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", root)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry(env.paths.RegistryFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		projects := registry.List()
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects are monitored. Use `codemap add [path]` to add one.")
			return nil
		}
		for _, p := range projects {
			state := "enabled"
			if !p.Enabled {
				state = "disabled"
			}
			fmt.Fprintf(out, "%s  [%s]  %s\n", p.Path, state, documentAge(p))
		}
		return nil
	},
}

// documentAge describes when the project's document was last written.
func documentAge(p config.Project) string {
	info, err := os.Stat(p.OutputPath())
	if err != nil {
		return "no document yet"
	}
	return fmt.Sprintf("%s updated %s", filepath.Base(p.OutputPath()), humanize.Time(info.ModTime()))
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default global configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := env.paths.Ensure(); err != nil {
			return err
		}
		if _, err := os.Stat(env.paths.ConfigFile); err == nil && !flagForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", env.paths.ConfigFile)
		}
		if err := config.Default().Save(env.paths.ConfigFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", env.paths.ConfigFile)
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [path]",
	Short: "Index a project once and write its document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootArg(args)
		if err != nil {
			return err
		}

		cfg := env.global.NewProject(root)
		if registry, err := config.LoadRegistry(env.paths.RegistryFile); err == nil {
			if registered, ok := registry.Get(root); ok {
				cfg = registered
			}
		}

		coordinator, err := project.New(cfg, project.Options{Logger: env.commandLogger()})
		if err != nil {
			return err
		}
		result, err := coordinator.Reindex(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files (%d failed) in %s, wrote %s\n",
			result.Files, result.Failed, result.Duration.Round(time.Millisecond), cfg.OutputPath())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon is running and what it monitors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		pid, err := daemon.ReadPID(env.paths.PIDFile)
		switch {
		case err == nil && daemon.ProcessAlive(pid):
			fmt.Fprintf(out, "Daemon: running (pid %d)\n", pid)
		case err == nil:
			fmt.Fprintf(out, "Daemon: not running (stale pid file for %d)\n", pid)
		default:
			fmt.Fprintln(out, "Daemon: not running")
		}

		registry, err := config.LoadRegistry(env.paths.RegistryFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Projects: %d monitored, %d enabled\n", len(registry.List()), len(registry.Enabled()))
		for _, p := range registry.Enabled() {
			fmt.Fprintf(out, "  %s  %s\n", p.Path, documentAge(p))
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		pid, err := daemon.ReadPID(env.paths.PIDFile)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(out, "Daemon is not running")
			return nil
		}
		if err != nil {
			return err
		}
		if !daemon.ProcessAlive(pid) {
			fmt.Fprintf(out, "Daemon is not running, removing stale pid file for %d\n", pid)
			return daemon.RemovePID(env.paths.PIDFile)
		}

		if err := daemon.Terminate(pid); err != nil {
			return fmt.Errorf("stopping daemon %d: %w", pid, err)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for daemon.ProcessAlive(pid) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("daemon %d did not exit within 10s", pid)
			case <-ticker.C:
			}
		}
		fmt.Fprintf(out, "Stopped daemon %d\n", pid)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove projects whose root no longer exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry(env.paths.RegistryFile)
		if err != nil {
			return err
		}
		removed := registry.CleanupStale()
		out := cmd.OutOrStdout()
		if len(removed) == 0 {
			fmt.Fprintln(out, "Nothing to clean up")
			return nil
		}
		if err := registry.Save(); err != nil {
			return err
		}
		for _, root := range removed {
			fmt.Fprintf(out, "Removed %s\n", root)
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register project|user [directory] [-- server args]",
	Short: "Register the codemap MCP server with Claude",
	Long: `Adds codemap to the mcpServers of a Claude configuration file.

  codemap register project [directory]   writes <directory>/.mcp.json (default: .)
  codemap register user                  writes ~/.claude.json
  codemap register user -- --log-level debug   forwards flags to "codemap mcp"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		positional, serverArgs := args, []string(nil)
		if dash := cmd.ArgsLenAtDash(); dash >= 0 {
			positional, serverArgs = args[:dash], args[dash:]
		}
		if len(positional) == 0 || len(positional) > 2 {
			return fmt.Errorf("expected a scope and at most one directory, got %v", positional)
		}

		opts := register.Options{Scope: positional[0], ServerArgs: serverArgs}
		if len(positional) == 2 {
			if opts.Scope != register.ScopeProject {
				return fmt.Errorf("a directory is only accepted for the project scope")
			}
			opts.Directory = positional[1]
		}
		return register.Run(opts, cmd.OutOrStdout())
	},
}
