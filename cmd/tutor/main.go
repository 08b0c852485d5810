package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/learnsphere/tutor/cmd/tutor/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configFlag := &cli.StringFlag{
		Name:  "config",
		Usage: "path to config file",
	}

	app := &cli.Command{
		Name:  "tutor",
		Usage: "Course material ingestion and AI tutoring for the learning platform",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create database schema and indexes",
				Flags:  []cli.Flag{configFlag},
				Action: commands.MigrateAction,
			},
			{
				Name:   "worker",
				Usage:  "Re-ingest every document through the ingestion worker pool",
				Flags:  []cli.Flag{configFlag},
				Action: commands.WorkerAction,
			},
			{
				Name:  "document",
				Usage: "Manage course documents",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Register a document and ingest its content",
						ArgsUsage: "<course-id>",
						Flags: []cli.Flag{
							configFlag,
							&cli.StringFlag{
								Name:     "title",
								Usage:    "document title",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "file",
								Usage: "local file to upload as the document content",
							},
							&cli.StringFlag{
								Name:  "url",
								Usage: "external URL serving as the document content",
							},
						},
						Action: commands.DocumentAddAction,
					},
					{
						Name:      "update",
						Usage:     "Point a document at new content and re-ingest",
						ArgsUsage: "<document-id>",
						Flags: []cli.Flag{
							configFlag,
							&cli.StringFlag{
								Name:  "file",
								Usage: "local file to upload as the new content",
							},
							&cli.StringFlag{
								Name:  "url",
								Usage: "external URL serving as the new content",
							},
						},
						Action: commands.DocumentUpdateAction,
					},
					{
						Name:      "remove",
						Usage:     "Delete a document and its chunks",
						ArgsUsage: "<document-id>",
						Flags:     []cli.Flag{configFlag},
						Action:    commands.DocumentRemoveAction,
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Rebuild the chunk set for an existing document",
				ArgsUsage: "<document-id>",
				Flags:     []cli.Flag{configFlag},
				Action:    commands.IngestAction,
			},
			{
				Name:      "ask",
				Usage:     "Ask a question against a course's material",
				ArgsUsage: "<course-id> <question>",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "course-title",
						Usage: "course title woven into the tutoring prompt",
					},
					&cli.BoolFlag{
						Name:  "allow-web",
						Usage: "permit the web fallback when course material is insufficient",
						Value: true,
					},
				},
				Action: commands.AskAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
