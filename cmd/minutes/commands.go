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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/minutes"
	"github.com/poiesic/minutes/config"
	"github.com/poiesic/minutes/core"
)

func serveCommand(cc *commandContext) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address; overrides server.addr",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := cc.loadConfig(c)
			if err != nil {
				return err
			}
			if addr := strings.TrimSpace(c.String("addr")); addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cc.withService(c, func(svc *minutes.Service) error {
				return svc.Serve(ctx)
			})
		},
	}
}

func transcribeCommand(cc *commandContext) *cli.Command {
	defaults := core.DefaultTranscriptionOptions()
	return &cli.Command{
		Name:      "transcribe",
		Usage:     "Transcribe and summarize one audio file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Recognizer model size",
				Value:   defaults.ModelSize,
			},
			&cli.StringFlag{
				Name:  "device",
				Usage: "Compute device (cpu, cuda, auto)",
				Value: defaults.Device,
			},
			&cli.StringFlag{
				Name:  "compute-type",
				Usage: "Model precision",
				Value: defaults.ComputeType,
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Spoken language code; empty detects it",
			},
			&cli.IntFlag{
				Name:  "beam-size",
				Usage: "Decoder beam width",
				Value: defaults.BeamSize,
			},
			&cli.BoolFlag{
				Name:  "word-timestamps",
				Usage: "Emit per-word timings",
			},
			&cli.BoolFlag{
				Name:  "vad",
				Usage: "Skip silence with voice activity detection",
				Value: defaults.VADFilter,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the finished job as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			path := strings.TrimSpace(c.Args().First())
			if path == "" {
				return errors.New("audio file argument is required")
			}
			opts := defaults
			opts.ModelSize = c.String("model")
			opts.Device = c.String("device")
			opts.ComputeType = c.String("compute-type")
			opts.Language = c.String("language")
			opts.BeamSize = c.Int("beam-size")
			opts.WordTimestamps = c.Bool("word-timestamps")
			opts.VADFilter = c.Bool("vad")

			out := c.App.Writer
			return cc.withService(c, func(svc *minutes.Service) error {
				if info, err := os.Stat(path); err == nil {
					fmt.Fprintf(c.App.ErrWriter, "Transcribing %s (%s) with %s\n",
						filepath.Base(path), humanize.IBytes(uint64(info.Size())), opts.Key())
				}
				job, err := svc.Transcribe(c.Context, path, opts)
				if err != nil {
					return fmt.Errorf("transcription failed: %w", err)
				}
				if c.Bool("json") {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(job)
				}
				printJob(out, job)
				return nil
			})
		},
	}
}

func summarizeCommand(cc *commandContext) *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Usage:     "Summarize text from a file or standard input",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "lang",
				Usage: "Language code of the text",
				Value: "en",
			},
		},
		Action: func(c *cli.Context) error {
			text, err := readInput(c)
			if err != nil {
				return err
			}
			return cc.withService(c, func(svc *minutes.Service) error {
				summary, err := svc.Dispatcher().Summarize(c.Context, text, c.String("lang"))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, summary)
				return nil
			})
		},
	}
}

func readInput(c *cli.Context) (string, error) {
	var r io.Reader = c.App.Reader
	if path := strings.TrimSpace(c.Args().First()); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func meetingCommand(cc *commandContext) *cli.Command {
	return &cli.Command{
		Name:  "meeting",
		Usage: "Manage meeting records",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a meeting so a recording can be attached",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Meeting title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "organizer",
						Usage: "Meeting organizer",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Initial status",
						Value: string(core.MeetingStatusScheduled),
					},
				},
				Action: func(c *cli.Context) error {
					status, err := core.ParseMeetingStatus(c.String("status"))
					if err != nil {
						return err
					}
					meeting := &core.Meeting{
						Title:     c.String("title"),
						Organizer: strings.TrimSpace(c.String("organizer")),
						Status:    status,
					}
					return cc.withService(c, func(svc *minutes.Service) error {
						if err := svc.Meetings().CreateMeeting(c.Context, meeting); err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, meeting.ID)
						return nil
					})
				},
			},
			{
				Name:  "list",
				Usage: "List meetings, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show meetings with this status",
					},
				},
				Action: func(c *cli.Context) error {
					var status core.MeetingStatus
					if raw := strings.TrimSpace(c.String("status")); raw != "" {
						parsed, err := core.ParseMeetingStatus(raw)
						if err != nil {
							return err
						}
						status = parsed
					}
					return cc.withService(c, func(svc *minutes.Service) error {
						meetings, err := svc.Meetings().ListMeetings(c.Context, status)
						if err != nil {
							return err
						}
						if len(meetings) == 0 {
							fmt.Fprintln(c.App.Writer, "No meetings")
							return nil
						}
						rows := make([][]string, 0, len(meetings))
						for _, m := range meetings {
							rows = append(rows, []string{m.ID, m.Title, m.Organizer, string(m.Status), humanize.Time(m.CreatedAt)})
						}
						fmt.Fprintln(c.App.Writer, renderTable(
							[]string{"ID", "Title", "Organizer", "Status", "Created"}, rows, nil))
						return nil
					})
				},
			},
		},
	}
}

func configCommand(cc *commandContext) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration helpers",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write a sample configuration file",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "Replace an existing file",
					},
				},
				Action: func(c *cli.Context) error {
					path := strings.TrimSpace(c.Args().First())
					if path == "" {
						path = "minutes.toml"
					}
					path, err := config.ExpandPath(path)
					if err != nil {
						return err
					}
					if _, err := os.Stat(path); err == nil && !c.Bool("overwrite") {
						return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
					}
					if err := config.CreateSample(path); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(c *cli.Context) error {
					cfg, err := cc.loadConfig(c)
					if err != nil {
						return err
					}
					data, err := cfg.Encode()
					if err != nil {
						return err
					}
					_, err = c.App.Writer.Write(data)
					return err
				},
			},
		},
	}
}

func printJob(w io.Writer, job core.Job) {
	if job.Result == nil {
		fmt.Fprintf(w, "Job %s finished without a transcript\n", job.ID)
		return
	}
	rows := make([][]string, 0, len(job.Result.Segments))
	for _, seg := range job.Result.Segments {
		rows = append(rows, []string{
			strconv.Itoa(seg.Index),
			formatTimestamp(seg.Start),
			formatTimestamp(seg.End),
			strings.TrimSpace(seg.Text),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Start", "End", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(w, "Language: %s (%.0f%%)\n", job.Result.Language, job.Result.LanguageProbability*100)
	fmt.Fprintf(w, "Duration: %s  Processing: %.1fs\n", formatTimestamp(job.Result.AudioDuration), job.Result.ProcessingTime)
	if job.Summary != "" {
		fmt.Fprintf(w, "\nSummary:\n%s\n", job.Summary)
	}
}

// formatTimestamp renders seconds as [h:]mm:ss.mmm.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	frac := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, frac)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, s, frac)
}
