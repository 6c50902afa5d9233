// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"logictree/internal/cli"
	"logictree/internal/config"
	"logictree/internal/instance"
	"logictree/internal/logging"
	"logictree/internal/session"
	"logictree/internal/web"
)

var version = "dev"

const (
	logFileName     = "logictree.log"
	journalSize     = 500
	shutdownTimeout = 5 * time.Second
)

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/logictree)")
	agentHelp := flag.Bool("agent-help", false, "print the scripting guide")

	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir)

	if *agentHelp {
		app.PrintAgentHelp(os.Stdout)
		return
	}

	if app.Execute(flag.Args()) {
		if err := runServer(*configDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// runServer owns the process-wide resources (instance lock, log manager)
// and serves until SIGINT or SIGTERM.
func runServer(configDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataDir := cli.ResolveDataDir(configDir)

	fl, err := instance.Lock(dataDir)
	if err != nil {
		return err
	}
	defer instance.Cleanup(dataDir, fl)

	journal := logging.NewJournal(journalSize)
	logManager, err := logging.NewManager(logging.Config{
		FilePath:       filepath.Join(dataDir, logFileName),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
		Console:        true,
		Journal:        journal,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logManager.Close() }()

	return serve(ctx, serverDeps{
		cfg:         cfg,
		configPath:  config.Path(configDir),
		dataDir:     dataDir,
		logProvider: logManager,
		setLevel:    logManager.SetLevel,
		journal:     journal,
	})
}

// serverDeps are the inputs of serve that runServer builds from the
// environment.
type serverDeps struct {
	cfg         config.Config
	configPath  string
	dataDir     string
	logProvider logging.LoggerProvider
	setLevel    func(string)
	journal     *logging.Journal
}

// serve runs the session and its web server until ctx is done. Config
// file changes are applied while running; bind and port need a restart.
func serve(ctx context.Context, deps serverDeps) error {
	appLogger := deps.logProvider.For("app")
	appLogger.Info("logictree starting", "version", version, "config", deps.configPath)

	sess := session.New(session.Options{StrictIDs: deps.cfg.StrictIDs()}, deps.logProvider)

	webServer := web.New(
		web.Config{Bind: deps.cfg.Web.Bind, Port: deps.cfg.Web.Port, Layout: deps.cfg.LayoutOptions()},
		sess,
		deps.logProvider,
		deps.journal,
	)
	ln, err := webServer.Listen()
	if err != nil {
		appLogger.Error("web server listen error", "error", err)
		return err
	}

	if err := instance.WritePort(deps.dataDir, webServer.Addr()); err != nil {
		appLogger.Error("failed to write port file", "error", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := webServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	applied := deps.cfg
	go func() {
		err := config.Watch(ctx, deps.configPath, deps.logProvider.For("config"), func(next config.Config) {
			sess.SetStrictIDs(next.StrictIDs())
			webServer.SetLayoutOptions(next.LayoutOptions())
			if deps.setLevel != nil {
				deps.setLevel(next.LogLevel)
			}
			if next.Web != applied.Web {
				appLogger.Warn("web address changes apply after restart", "bind", next.Web.Bind, "port", next.Web.Port)
			}
			applied = next
		})
		if err != nil {
			appLogger.Warn("config watching disabled", "error", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "logictree listening on http://%s\n", webServer.Addr())

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			appLogger.Error("web server error", "error", err)
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("web server shutdown error", "error", err)
	}

	appLogger.Info("logictree stopped")
	return runErr
}
