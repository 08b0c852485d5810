package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// IngestAction re-runs the extract/chunk/embed pipeline for one document,
// atomically replacing its chunk set.
func IngestAction(ctx context.Context, cmd *cli.Command) error {
	docID, err := uuid.Parse(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", cmd.Args().First(), err)
	}

	app, err := NewApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireDB(); err != nil {
		return err
	}

	doc, err := app.DB.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", docID)
	}

	if err := app.Ingestion.Ingest(ctx, doc); err != nil {
		return err
	}

	fmt.Printf("Document %s ingested\n", docID)
	return nil
}
