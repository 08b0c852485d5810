package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// MigrateAction creates the schema, the pgvector extension, and the indexes.
// The embedding column is sized to the configured provider's dimension.
func MigrateAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireDB(); err != nil {
		return err
	}

	dimension := app.Embedder.Dimension()
	if err := app.DB.Migrate(ctx, dimension); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migrations completed (embedding dimension %d)\n", dimension)
	return nil
}
