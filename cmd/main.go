package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"skabillium/ringq/cmd/db"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "ringq",
		Usage:   "serve named string queues over the redis protocol",
		Version: RingqVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
			},
			&cli.StringFlag{Name: "host", Usage: "host to listen on"},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "port to run server",
			},
			&cli.StringFlag{Name: "log-level", Usage: "panic, fatal, error, warn, info, debug or trace"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.StringFlag{Name: "trace", Usage: "append commands that change queues to this file"},
		},
		Action: run,
	}
}

// configFromContext loads the config file and environment, then applies the
// flags that were set on the command line.
func configFromContext(c *cli.Context) (*Config, error) {
	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	for flag, field := range map[string]*string{
		"host":       &cfg.Host,
		"port":       &cfg.Port,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
		"trace":      &cfg.TraceFile,
	} {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	cfg, err := configFromContext(c)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := NewServer(cfg.Addr(), db.NewDatabase(), logger)

	var tracech chan []string
	traceDone := make(chan struct{})
	if cfg.TraceFile != "" {
		file, err := openTrace(cfg.TraceFile)
		if err != nil {
			return err
		}

		tracech = make(chan []string, 64)
		server.WithTrace(tracech)
		go func() {
			writeTrace(file, tracech, logger)
			close(traceDone)
		}()
	}

	if err := server.Listen(); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		server.Stop()
	}()
	server.Serve()

	if tracech != nil {
		close(tracech)
		<-traceDone
	}
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(errors.Wrap(err, "ringq"))
	}
}
