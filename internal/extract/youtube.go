package extract

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const timedTextURL = "https://video.google.com/timedtext"

// parseVideoID extracts a video id from a recognized video-hosting link,
// returning "" for anything else.
func parseVideoID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")

	switch host {
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id
		}
		// Shorts and embed links carry the id in the path.
		for _, prefix := range []string{"/shorts/", "/embed/"} {
			if strings.HasPrefix(u.Path, prefix) {
				return strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
			}
		}
	}
	return ""
}

// transcriptXML mirrors the timedtext caption track format.
type transcriptXML struct {
	Texts []struct {
		Content string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTranscript retrieves the caption track for the video, trying each
// preferred language in order. Non-empty captions are joined with single
// spaces in chronological order.
func (e *Extractor) fetchTranscript(ctx context.Context, videoID string) (string, error) {
	var lastErr error
	for _, lang := range e.transcriptLangs {
		text, err := e.fetchTranscriptLang(ctx, videoID, lang)
		if err != nil {
			lastErr = err
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("no transcript available for video %s", videoID)
}

func (e *Extractor) fetchTranscriptLang(ctx context.Context, videoID, lang string) (string, error) {
	endpoint := fmt.Sprintf("%s?lang=%s&v=%s", timedTextURL, url.QueryEscape(lang), url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript fetch failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}

	return joinCaptions(data)
}

func joinCaptions(data []byte) (string, error) {
	var transcript transcriptXML
	if err := xml.Unmarshal(data, &transcript); err != nil {
		return "", fmt.Errorf("failed to parse transcript: %w", err)
	}

	var captions []string
	for _, t := range transcript.Texts {
		if c := strings.TrimSpace(t.Content); c != "" {
			captions = append(captions, c)
		}
	}
	return strings.Join(captions, " "), nil
}
