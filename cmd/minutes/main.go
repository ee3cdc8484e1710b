// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/minutes"
	"github.com/poiesic/minutes/config"
)

func main() {
	app := newApp(&commandContext{})
	if err := app.Run(os.Args); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newApp(cc *commandContext) *cli.App {
	return &cli.App{
		Name:  "minutes",
		Usage: "Transcribe and summarize meeting recordings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML configuration file (default ./minutes.toml)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (text, json); overrides the config file",
			},
		},
		Before: cc.setupLogger,
		Commands: []*cli.Command{
			serveCommand(cc),
			transcribeCommand(cc),
			summarizeCommand(cc),
			meetingCommand(cc),
			configCommand(cc),
		},
	}
}

// commandContext carries state shared by every command of one invocation.
type commandContext struct {
	serviceOpts []minutes.ServiceOption

	config *config.Config
}

// loadConfig reads the configuration named by --config once per invocation.
func (cc *commandContext) loadConfig(c *cli.Context) (*config.Config, error) {
	if cc.config != nil {
		return cc.config, nil
	}
	cfg, loaded, err := config.Load(strings.TrimSpace(c.String("config")))
	if err != nil {
		return nil, err
	}
	if !loaded {
		slog.Debug("no configuration file found, using defaults")
	}
	if err := cc.applyLogging(c, cfg); err != nil {
		return nil, err
	}
	cc.config = cfg
	return cfg, nil
}

// withService opens the service for the duration of fn.
func (cc *commandContext) withService(c *cli.Context, fn func(*minutes.Service) error) error {
	cfg, err := cc.loadConfig(c)
	if err != nil {
		return err
	}
	opts := append([]minutes.ServiceOption{minutes.WithLogger(slog.Default())}, cc.serviceOpts...)
	svc, err := minutes.NewService(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			slog.Error("error closing service", "err", cerr)
		}
	}()
	return fn(svc)
}

func (cc *commandContext) setupLogger(c *cli.Context) error {
	level := c.String("log-level")
	if level == "" {
		level = "info"
	}
	format := c.String("log-format")
	if format == "" {
		format = "text"
	}
	logger, err := newLogger(c.App.ErrWriter, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// applyLogging switches to the configured logging settings. Flags given on
// the command line win over the file.
func (cc *commandContext) applyLogging(c *cli.Context, cfg *config.Config) error {
	level := cfg.Logging.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	format := cfg.Logging.Format
	if c.IsSet("log-format") {
		format = c.String("log-format")
	}
	logger, err := newLogger(c.App.ErrWriter, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}
