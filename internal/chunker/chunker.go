package chunker

import (
	"strings"
)

// Defaults for course material chunking. Tunable via configuration.
const (
	DefaultMaxChars     = 1200
	DefaultOverlapChars = 100
)

// Split segments text into sentence-based chunks of at most maxChars
// characters of new content, seeding each chunk after the first with the
// last overlapChars characters of its predecessor for context continuity.
// The result is deterministic and loses no sentence content: every
// character of every sentence appears in at least one chunk.
func Split(text string, maxChars, overlapChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars - 1
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	// A single sentence longer than maxChars is cut into maxChars-sized
	// pieces so it can never be dropped.
	var units []string
	for _, s := range sentences {
		if len([]rune(s)) <= maxChars {
			units = append(units, s)
			continue
		}
		runes := []rune(s)
		for len(runes) > 0 {
			n := maxChars
			if n > len(runes) {
				n = len(runes)
			}
			units = append(units, string(runes[:n]))
			runes = runes[n:]
		}
	}

	var chunks []string
	var buf string
	for _, u := range units {
		if buf == "" {
			buf = u
			continue
		}
		if len([]rune(buf))+1+len([]rune(u)) > maxChars {
			chunks = append(chunks, buf)
			// Seed the next chunk with the tail of the one just closed,
			// unless that would push it past the maxChars+overlapChars bound.
			seed := tailRunes(buf, overlapChars)
			if seed != "" && len([]rune(seed))+1+len([]rune(u)) <= maxChars+overlapChars {
				buf = seed + " " + u
			} else {
				buf = u
			}
			continue
		}
		buf += " " + u
	}
	if buf != "" {
		chunks = append(chunks, buf)
	}

	return chunks
}

// splitSentences cuts text at terminal punctuation. Text after the last
// terminator is kept as a final sentence so nothing is dropped.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?':
			flush()
		}
	}
	flush()

	return sentences
}

// tailRunes returns the last n runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
