package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/learnsphere/tutor/internal/provider"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// Course identifies the scope a question is asked in. The title is woven
// into prompts so the model knows which subject it tutors.
type Course struct {
	ID    uuid.UUID
	Title string
}

// Composer produces tutoring answers with a two-stage policy. Stage 1
// answers from retrieved course material. When that material is missing or
// the model flags it as insufficient, Stage 2 re-prompts for a web-grounded
// answer with link citations.
type Composer struct {
	retriever *Retriever
	generator provider.Generator
	logger    *zap.Logger
}

// NewComposer creates an answer composer.
func NewComposer(retriever *Retriever, generator provider.Generator, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Answer responds to a learner question within a course. It returns the
// answer text and the sources backing it: document titles in retrieval
// order for grounded answers, extracted URLs (or the "Internet" sentinel)
// for fallback answers. With allowWeb false the fallback never runs and
// the Stage-1 answer is returned as-is.
func (c *Composer) Answer(ctx context.Context, course Course, question string, allowWeb bool, history []Turn) (string, []string, error) {
	log := c.logger.With(
		zap.String("courseID", course.ID.String()),
		zap.Bool("allowWeb", allowWeb),
	)

	results, err := c.retriever.Retrieve(ctx, course.ID, question)
	if err != nil {
		return "", nil, fmt.Errorf("answering question: %w", err)
	}

	contextBlock := noMaterialContext
	var sources []string
	if len(results) > 0 {
		texts := make([]string, 0, len(results))
		for _, r := range results {
			texts = append(texts, r.Chunk.Content)
			sources = append(sources, r.Chunk.Metadata.Source)
		}
		contextBlock = strings.Join(texts, "\n\n")
	}
	log.Info("retrieved context", zap.Int("chunks", len(results)))

	prompt := buildGroundedPrompt(course.Title, history, contextBlock, question, sources)
	answer, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("answering question: %w", err)
	}
	answer = strings.TrimSpace(answer)

	if !c.needsFallback(answer, len(results)) {
		return answer, sources, nil
	}
	if !allowWeb {
		log.Info("web fallback suppressed")
		return answer, sources, nil
	}

	log.Info("falling back to web answer")
	webAnswer, err := c.generator.Generate(ctx, buildWebPrompt(course.Title, question))
	if err != nil {
		return "", nil, fmt.Errorf("answering question: %w", err)
	}
	webAnswer = strings.TrimSpace(webAnswer)

	sources = urlPattern.FindAllString(webAnswer, -1)
	if len(sources) == 0 {
		sources = []string{SourceInternet}
	}
	return webAnswer, sources, nil
}

// needsFallback reports whether the grounded answer should be replaced by a
// web-grounded one.
func (c *Composer) needsFallback(answer string, retrieved int) bool {
	if retrieved == 0 {
		return true
	}
	return strings.Contains(answer, insufficiencyTrigger) ||
		strings.Contains(answer, noInformationPhrase)
}
