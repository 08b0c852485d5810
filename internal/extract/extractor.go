package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/learnsphere/tutor/internal/store"
)

// ObjectStorage resolves a stored object name to a retrievable URL.
type ObjectStorage interface {
	SignedURL(ctx context.Context, name string, ttl time.Duration) (string, error)
}

// Extractor converts a document's content source into plain text. Failures
// for a single document degrade to empty text so they never abort a batch;
// only context cancellation is surfaced as an error.
type Extractor struct {
	storage         ObjectStorage
	httpClient      *http.Client
	downloadTimeout time.Duration
	transcriptLangs []string
	logger          *zap.Logger
}

// NewExtractor creates a new extractor. transcriptLangs is the ordered
// language preference for video transcripts (primary locale first).
func NewExtractor(storage ObjectStorage, downloadTimeout time.Duration, transcriptLangs []string, logger *zap.Logger) *Extractor {
	if downloadTimeout <= 0 {
		downloadTimeout = 20 * time.Second
	}
	if len(transcriptLangs) == 0 {
		transcriptLangs = []string{"vi", "en"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		storage:         storage,
		httpClient:      &http.Client{Timeout: downloadTimeout},
		downloadTimeout: downloadTimeout,
		transcriptLangs: transcriptLangs,
		logger:          logger,
	}
}

// Extract returns the document's plain text, or "" when there is no
// retrievable content or extraction failed.
func (e *Extractor) Extract(ctx context.Context, doc *store.Document) (string, error) {
	switch {
	case doc.FileName != "":
		text, err := e.extractStoredFile(ctx, doc)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			e.logger.Warn("file extraction failed",
				zap.String("documentID", doc.ID.String()),
				zap.String("file", doc.FileName),
				zap.Error(err),
			)
			return "", nil
		}
		return text, nil

	case doc.URL != "":
		if videoID := parseVideoID(doc.URL); videoID != "" {
			text, err := e.fetchTranscript(ctx, videoID)
			if err != nil {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				e.logger.Warn("transcript fetch failed",
					zap.String("documentID", doc.ID.String()),
					zap.String("videoID", videoID),
					zap.Error(err),
				)
				return "", nil
			}
			return text, nil
		}
		text, err := e.fetchURL(ctx, doc.URL)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			e.logger.Warn("url fetch failed",
				zap.String("documentID", doc.ID.String()),
				zap.String("url", doc.URL),
				zap.Error(err),
			)
			return "", nil
		}
		return text, nil

	default:
		return "", nil
	}
}

// extractStoredFile downloads the object into a scratch file that is removed
// on every exit path, then extracts by extension.
func (e *Extractor) extractStoredFile(ctx context.Context, doc *store.Document) (string, error) {
	signedURL, err := e.storage.SignedURL(ctx, doc.FileName, e.downloadTimeout+time.Minute)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(doc.FileName))
	tmp, err := os.CreateTemp("", "tutor-extract-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := e.download(ctx, signedURL, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to flush scratch file: %w", err)
	}

	switch ext {
	case ".pdf":
		return extractPDF(tmpPath)
	case ".docx":
		return extractDOCX(tmpPath)
	default:
		// .txt and unrecognized extensions: raw bytes as UTF-8.
		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return "", fmt.Errorf("failed to read scratch file: %w", err)
		}
		return string(data), nil
	}
}

func (e *Extractor) download(ctx context.Context, url string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("failed to write scratch file: %w", err)
	}
	return nil
}

// fetchURL returns the response body verbatim (no HTML stripping).
func (e *Extractor) fetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(data), nil
}
