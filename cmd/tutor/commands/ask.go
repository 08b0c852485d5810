package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/learnsphere/tutor/internal/rag"
)

// AskAction answers a single question against a course's material and prints
// the answer with its sources.
func AskAction(ctx context.Context, cmd *cli.Command) error {
	courseID, err := uuid.Parse(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("invalid course id %q: %w", cmd.Args().First(), err)
	}
	question := strings.TrimSpace(strings.Join(cmd.Args().Slice()[1:], " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	app, err := NewApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	course := rag.Course{
		ID:    courseID,
		Title: cmd.String("course-title"),
	}
	answer, sources, err := app.Composer.Answer(ctx, course, question, cmd.Bool("allow-web"), nil)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	if len(sources) > 0 {
		fmt.Printf("\nNguồn: %s\n", strings.Join(sources, ", "))
	}
	return nil
}
