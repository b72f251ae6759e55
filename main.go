package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"mediumgate/internal/detect"
	"mediumgate/internal/history"
	"mediumgate/internal/serve"
	"mediumgate/pkg/help"
)

func main() {
	// A missing .env is fine; real environment variables win anyway.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "mediumgate",
		Usage: "detect Medium publications behind custom domains and route them to a mirror",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the YAML config file",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "detect",
				Usage:     "classify one or more URLs",
				ArgsUsage: "[urls...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "urls",
						Usage: "comma-separated URLs to classify",
					},
					&cli.IntFlag{
						Name:  "workers",
						Value: 4,
						Usage: "number of concurrent probes",
					},
					&cli.Float64Flag{
						Name:  "rate",
						Value: 8,
						Usage: "maximum probes per second, 0 disables the limit",
					},
					&cli.IntFlag{
						Name:  "threshold",
						Usage: "override the decision threshold",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "json",
						Usage: "output format: json or yaml",
					},
					&cli.BoolFlag{
						Name:  "preview",
						Usage: "attach page metadata extracted from the probed head",
					},
					&cli.BoolFlag{
						Name:  "no-record",
						Usage: "skip writing results to the history store",
					},
				},
				Action: detect.DetectAction,
			},
			{
				Name:      "domain",
				Usage:     "check a hostname against the known-publication allowlist",
				ArgsUsage: "<hostname>",
				Action:    detect.DomainAction,
			},
			{
				Name:      "mirror",
				Usage:     "print the mirror URL for a Medium post",
				ArgsUsage: "<url>",
				Action:    detect.MirrorAction,
			},
			{
				Name:  "serve",
				Usage: "run the detection HTTP service",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address, overrides config",
					},
				},
				Action: serve.ServeAction,
			},
			{
				Name:  "history",
				Usage: "inspect recorded detections",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "number of entries to show",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "yaml",
						Usage: "output format: yaml or json",
					},
				},
				Action: history.HistoryAction,
				Subcommands: []*cli.Command{
					{
						Name:  "purge",
						Usage: "delete entries older than a duration",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "older-than",
								Value: "720h",
								Usage: "age cutoff as a Go duration",
							},
						},
						Action: history.PurgeAction,
					},
				},
			},
			{
				Name:  "quickstart",
				Usage: "print a machine-readable usage guide",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:  "prefs",
				Usage: "read or change stored preferences",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "print the stored preferences",
						Action: history.PrefsShowAction,
					},
					{
						Name:  "set",
						Usage: "update preferences from flags",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "auto-redirect",
								Usage: "redirect Medium URLs to the mirror on /r",
							},
							&cli.IntFlag{
								Name:  "threshold",
								Usage: "decision threshold used by the redirect surface",
							},
							&cli.StringFlag{
								Name:  "mirror-base",
								Usage: "mirror origin used by the redirect surface",
							},
						},
						Action: history.PrefsSetAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
