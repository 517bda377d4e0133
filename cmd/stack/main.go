package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	serveradapter "github.com/evanschultz/stack/internal/adapters/server"
	servercommon "github.com/evanschultz/stack/internal/adapters/server/common"
	"github.com/evanschultz/stack/internal/adapters/storage/sqlite"
	"github.com/evanschultz/stack/internal/app"
	"github.com/evanschultz/stack/internal/config"
	"github.com/evanschultz/stack/internal/platform"
	"github.com/evanschultz/stack/internal/tui"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program the entrypoint depends on.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the terminal program; tests swap it for a fake.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := newRootCommand(os.Stdout, os.Stderr)
	if err := fang.Execute(ctx, root, fang.WithVersion(version)); err != nil {
		stop()
		os.Exit(1)
	}
}

// run executes the command tree without fang styling, for tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// cli holds global flag values shared by every subcommand.
type cli struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
	output     string
	stdout     io.Writer
	stderr     io.Writer
}

// newRootCommand builds the full command tree; bare `stack` starts the TUI.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	c := &cli{stdout: stdout, stderr: stderr}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("STACK_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("STACK_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:           "stack",
		Short:         "Terminal kanban board for epics, stories and tasks",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&c.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.StringVarP(&c.output, "output", "o", formatJSON, "batch output format: json or yaml")

	root.AddCommand(
		c.newEpicCommand(),
		c.newStoryCommand(),
		c.newTaskCommand(),
		c.newBoardCommand(),
		c.newExportCommand(),
		c.newImportCommand(),
		c.newServeCommand(),
		c.newPathsCommand(),
		c.newVersionCommand(),
	)
	return root
}

// session is one opened runtime: config, logger, store and service.
type session struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
}

// resolvePaths applies the app-name and dev-mode options.
func (c *cli) resolvePaths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
}

// open resolves paths and config, builds the logger and opens sqlite.
func (c *cli) open(command string, muteConsole bool) (*session, error) {
	if _, err := parseFormat(c.output); err != nil {
		return nil, err
	}
	paths, err := c.resolvePaths()
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(c.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("STACK_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(c.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("STACK_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(c.stderr, paths.AppName, c.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if muteConsole {
		// The terminal belongs to the board while it runs.
		logger.SetConsoleEnabled(false)
	}
	logger.Info("startup configuration resolved", "app", paths.AppName, "dev_mode", c.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Debug("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	svc := app.NewService(repo, time.Now, app.ServiceConfig{
		DefaultEpicColor: cfg.Epics.DefaultColor,
	})
	return &session{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		repo:       repo,
		svc:        svc,
	}, nil
}

// Close releases the store and the dev log file.
func (s *session) Close() {
	if s == nil {
		return
	}
	if err := s.repo.Close(); err != nil {
		s.logger.Warn("sqlite close failed", "db_path", s.cfg.Database.Path, "err", err)
	}
	_ = s.logger.Close()
}

// withSession opens a session around one batch command and logs its outcome.
func (c *cli) withSession(command string, fn func(*session) error) error {
	s, err := c.open(command, false)
	if err != nil {
		return err
	}
	defer s.Close()

	s.logger.Debug("command flow start", "command", command)
	if err := fn(s); err != nil {
		s.logger.Debug("command flow failed", "command", command, "err", err)
		return err
	}
	s.logger.Debug("command flow complete", "command", command)
	return nil
}

// runTUI opens a session and runs the board until the user quits.
func (c *cli) runTUI(ctx context.Context) error {
	s, err := c.open("tui", true)
	if err != nil {
		return err
	}
	defer s.Close()

	tick, err := s.cfg.UI.TickDuration()
	if err != nil {
		return err
	}
	m := tui.NewModel(
		s.svc,
		tui.WithLogger(s.logger),
		tui.WithEditorCommand(s.cfg.Editor.Command),
		tui.WithTickInterval(tick),
		tui.WithMarkdownStyle(s.cfg.UI.MarkdownStyle),
		tui.WithShowPreview(s.cfg.UI.ShowPreview),
	)
	s.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		s.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	if ctx.Err() != nil {
		s.logger.Info("tui stopped by signal")
	}
	s.logger.Info("command flow complete", "command", "tui")
	return nil
}

// newServeCommand builds `stack serve`.
func (c *cli) newServeCommand() *cobra.Command {
	var bind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON read API and MCP tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession("serve", func(s *session) error {
				cfg := serveradapter.Config{
					HTTPBind:      s.cfg.Server.HTTPBind,
					APIEndpoint:   s.cfg.Server.APIEndpoint,
					MCPEndpoint:   s.cfg.Server.MCPEndpoint,
					ServerName:    s.paths.AppName,
					ServerVersion: version,
				}
				if cmd.Flags().Changed("http") {
					cfg.HTTPBind = bind
				}
				if cmd.Flags().Changed("api-endpoint") {
					cfg.APIEndpoint = apiEndpoint
				}
				if cmd.Flags().Changed("mcp-endpoint") {
					cfg.MCPEndpoint = mcpEndpoint
				}
				deps := serveradapter.Dependencies{
					Board:  servercommon.NewAppServiceAdapter(s.svc),
					Logger: s.logger,
				}
				if err := serveCommandRunner(cmd.Context(), cfg, deps); err != nil {
					s.logger.Error("serve failed", "err", err)
					return fmt.Errorf("run serve command: %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bind, "http", "127.0.0.1:8080", "HTTP bind address")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "/api/v1", "HTTP API base path")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "/mcp", "MCP streamable HTTP path")
	return cmd
}

// newPathsCommand builds `stack paths`.
func (c *cli) newPathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := c.resolvePaths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", paths.AppName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

// newVersionCommand builds `stack version`.
func (c *cli) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stack %s\n", version)
			return err
		},
	}
}

// parseBoolEnv reads a boolean environment variable, reporting whether it was set and valid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
