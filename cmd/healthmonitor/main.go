package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/health-monitor/internal/application"
	"github.com/eugenenazirov/health-monitor/internal/config"
	"github.com/eugenenazirov/health-monitor/internal/logging"
)

type cliOptions struct {
	configFile string
	properties map[string]string
	overrides  map[string]string
	port       int
	appName    string
	logLevel   string
}

func newCLI() (*kingpin.Application, *cliOptions) {
	opts := &cliOptions{
		properties: map[string]string{},
		overrides:  map[string]string{},
	}
	app := kingpin.New("health-monitor", "Embedded health and metrics endpoint for Go services")
	app.Flag("config", "Path to a .properties or .yaml configuration file").StringVar(&opts.configFile)
	app.Flag("property", "System property key=value (repeatable)").Short('D').StringMapVar(&opts.properties)
	app.Flag("set", "Explicit override key=value, highest precedence (repeatable)").StringMapVar(&opts.overrides)
	app.Flag("port", "HTTP port, applied after resolution").Default("-1").IntVar(&opts.port)
	app.Flag("app-name", "Application name, applied after resolution").StringVar(&opts.appName)
	app.Flag("log-level", "Log level (debug, info, warn, error)").Default("info").StringVar(&opts.logLevel)
	return app, opts
}

func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load(&config.LoadOptions{
		ConfigFile:       opts.configFile,
		Overrides:        config.MapSource(opts.overrides),
		SystemProperties: config.MapSource(opts.properties),
	})
	if err != nil {
		return nil, err
	}

	if opts.port >= 0 {
		cfg.SetServerPort(opts.port)
	}
	if opts.appName != "" {
		cfg.SetApplicationName(opts.appName)
	}
	return cfg, nil
}

func main() {
	app, opts := newCLI()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(opts.logLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	module, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize health monitoring module", zap.Error(err))
	}

	if err := module.Start(); err != nil {
		logger.Fatal("failed to start health monitoring module", zap.Error(err))
	}

	<-module.AddShutdownHook()
}
