// Command dyncomm-server serves community tracking over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-dyncomm/pkg/api"
	"github.com/dd0wney/cluso-dyncomm/pkg/config"
	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
	"github.com/dd0wney/cluso-dyncomm/pkg/metrics"
	"github.com/dd0wney/cluso-dyncomm/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config and PORT)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := logging.New(cfg.Log.Level, os.Stdout)

	if err := run(cfg, *configPath, logger); err != nil {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}
}

// run serves until a termination signal. Deferred cleanup runs before main
// decides the exit code.
func run(cfg *config.Config, configPath string, logger *logging.JSONLogger) error {
	apiServer, err := api.NewServer(cfg, logger, metrics.DefaultRegistry())
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}
	defer apiServer.Close()

	srv := server.NewGracefulServer(fmt.Sprintf(":%d", cfg.Server.Port), apiServer.Handler(), logger)
	srv.SetShutdownTimeout(cfg.Server.ShutdownTimeout)

	// SIGHUP re-reads the config file; detection settings and log level
	// apply to later requests, server settings need a restart.
	srv.SetConfigReloadFunc(func() error {
		next, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := apiServer.SetDetection(next.Detection); err != nil {
			return err
		}
		logger.SetLevel(logging.ParseLevel(next.Log.Level))
		return nil
	})

	logger.Info("dyncomm server starting",
		logging.Int("port", cfg.Server.Port),
		logging.String("partitioner", cfg.Detection.Partitioner),
		logging.Int("trees", cfg.Detection.Trees),
		logging.Uint64("seed", cfg.Detection.Seed))

	return srv.Run(context.Background())
}
