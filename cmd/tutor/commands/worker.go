package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// WorkerAction re-ingests every document through the watcher's worker pool.
// Useful after a provider or chunking change, when the whole corpus needs its
// chunk sets rebuilt.
func WorkerAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireDB(); err != nil {
		return err
	}

	docs, err := app.DB.ListDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents to ingest")
		return nil
	}

	watcher := newWatcher(ctx, app)
	for _, doc := range docs {
		watcher.OnDocumentCreated(doc)
	}
	watcher.Close()

	fmt.Printf("Re-ingested %d documents\n", len(docs))
	return nil
}
