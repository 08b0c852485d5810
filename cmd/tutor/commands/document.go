package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/learnsphere/tutor/internal/ingest"
	"github.com/learnsphere/tutor/internal/store"
)

// DocumentAddAction registers a document under a course, uploads its file to
// object storage when one is given, and ingests the content before returning.
func DocumentAddAction(ctx context.Context, cmd *cli.Command) error {
	courseID, err := uuid.Parse(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("invalid course id %q: %w", cmd.Args().First(), err)
	}
	filePath := cmd.String("file")
	rawURL := cmd.String("url")
	if filePath != "" && rawURL != "" {
		return fmt.Errorf("--file and --url are mutually exclusive: a document has one content source")
	}

	app, err := NewApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireDB(); err != nil {
		return err
	}

	doc := &store.Document{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    cmd.String("title"),
		URL:      rawURL,
	}
	if filePath != "" {
		name, err := uploadFile(ctx, app, doc.ID, filePath)
		if err != nil {
			return err
		}
		doc.FileName = name
	}

	if err := app.DB.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	watcher := newWatcher(ctx, app)
	watcher.OnDocumentCreated(doc)
	watcher.Close()

	fmt.Printf("Document %s added to course %s\n", doc.ID, courseID)
	return nil
}

// DocumentUpdateAction swaps a document's content source and re-ingests.
// The old chunk set is invalidated before the new content is processed.
func DocumentUpdateAction(ctx context.Context, cmd *cli.Command) error {
	docID, err := uuid.Parse(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", cmd.Args().First(), err)
	}
	filePath := cmd.String("file")
	rawURL := cmd.String("url")
	if filePath != "" && rawURL != "" {
		return fmt.Errorf("--file and --url are mutually exclusive: a document has one content source")
	}
	if filePath == "" && rawURL == "" {
		return fmt.Errorf("one of --file or --url is required")
	}

	app, err := NewApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireDB(); err != nil {
		return err
	}

	oldDoc, err := app.DB.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if oldDoc == nil {
		return fmt.Errorf("document %s not found", docID)
	}

	newDoc := *oldDoc
	newDoc.FileName = ""
	newDoc.URL = rawURL
	if filePath != "" {
		name, err := uploadFile(ctx, app, docID, filePath)
		if err != nil {
			return err
		}
		newDoc.FileName = name
	}

	if err := app.DB.UpdateDocumentContent(ctx, docID, newDoc.FileName, newDoc.URL); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	watcher := newWatcher(ctx, app)
	watcher.OnDocumentContentChanged(oldDoc, &newDoc)
	watcher.Close()

	fmt.Printf("Document %s updated and re-ingested\n", docID)
	return nil
}

// DocumentRemoveAction deletes a document together with its chunks.
func DocumentRemoveAction(ctx context.Context, cmd *cli.Command) error {
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

	watcher := newWatcher(ctx, app)
	watcher.OnDocumentDeleted(doc)
	watcher.Close()

	if doc.FileName != "" {
		if err := app.Storage.Delete(ctx, doc.FileName); err != nil {
			app.Logger.Warn("failed to delete stored object", zap.String("file", doc.FileName), zap.Error(err))
		}
	}

	if err := app.DB.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	fmt.Printf("Document %s removed\n", docID)
	return nil
}

func newWatcher(ctx context.Context, app *App) *ingest.Watcher {
	w := ingest.NewWatcher(
		app.Ingestion,
		app.Chunks,
		app.Config.Ingest.Workers,
		app.Config.Ingest.QueueSize,
		app.Logger,
	)
	w.Start(ctx)
	return w
}

// uploadFile pushes a local file into object storage under a name derived
// from the document id, keeping the original extension for format dispatch.
func uploadFile(ctx context.Context, app *App, docID uuid.UUID, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	name := fmt.Sprintf("%s%s", docID, filepath.Ext(path))
	if _, err := app.Storage.Upload(ctx, data, name); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return name, nil
}
