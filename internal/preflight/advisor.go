// Package preflight provides a heuristic pre-check for generation prompts.
// Advise is a pure transform from prompt plus generation knobs to a
// structured advisory; it performs no I/O and never fails.
package preflight

import (
	"fmt"
	"strings"

	"github.com/lromero/videogen-api/internal/job"
)

const (
	// summaryMaxLen is the display length the prompt is truncated to.
	summaryMaxLen = 140
	// frameMax is the maximum number of storyboard excerpts.
	frameMax = 3
	// fallbackExcerptLen bounds the single-excerpt fallback.
	fallbackExcerptLen = 80
)

// sensitiveTerms is the denylist matched case-insensitively against prompts.
var sensitiveTerms = []string{
	"bomb",
	"explosive",
	"weapon",
	"gun",
	"blood",
	"gore",
	"kill",
	"suicide",
	"nude",
	"drug",
}

// Advisory is the result of a preflight check, before it is assigned an ID
// and stored.
type Advisory struct {
	Summary              string
	Frames               []string
	Warnings             []string
	SuggestedPrompt      string
	EstimatedTimeSeconds int
	Approved             bool
}

// Advise produces an advisory for the given prompt and generation knobs.
// An empty prompt yields a degenerate advisory; rejecting empty prompts is
// the caller's responsibility.
func Advise(prompt, aspectRatio, resolution string, quality job.Quality) Advisory {
	_ = aspectRatio // reserved knob, currently not part of any heuristic

	warnings := matchWarnings(prompt)

	return Advisory{
		Summary:              summarize(prompt),
		Frames:               frames(prompt),
		Warnings:             warnings,
		SuggestedPrompt:      strings.Join(strings.Fields(prompt), " "),
		EstimatedTimeSeconds: estimateSeconds(quality, resolution),
		Approved:             len(warnings) == 0,
	}
}

// summarize truncates the prompt to summaryMaxLen runes, marking truncation
// with an ellipsis.
func summarize(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= summaryMaxLen {
		return prompt
	}
	return string(runes[:summaryMaxLen]) + "..."
}

// frames extracts up to three excerpts for a storyboard suggestion.
// Sentence boundaries are preferred when they yield at least three sentences;
// comma splitting is the next attempt, then a single truncated excerpt.
func frames(prompt string) []string {
	if strings.TrimSpace(prompt) == "" {
		return []string{}
	}

	sentences := splitSentences(prompt)
	if len(sentences) >= frameMax {
		return sentences[:frameMax]
	}

	if parts := splitNonEmpty(prompt, ","); len(parts) > 0 {
		if len(parts) > frameMax {
			parts = parts[:frameMax]
		}
		return parts
	}

	excerpt := strings.TrimSpace(prompt)
	if runes := []rune(excerpt); len(runes) > fallbackExcerptLen {
		excerpt = string(runes[:fallbackExcerptLen])
	}
	return []string{excerpt}
}

// splitSentences splits on '.', '?' or '!' followed by whitespace (or end of
// input) and drops empty fragments.
func splitSentences(s string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) && (i == len(runes)-1 || isSpace(runes[i+1])) {
			if t := strings.TrimSpace(b.String()); t != "" && t != "." && t != "?" && t != "!" {
				sentences = append(sentences, t)
			}
			b.Reset()
		}
	}
	if t := strings.TrimSpace(b.String()); t != "" {
		sentences = append(sentences, t)
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// splitNonEmpty splits on sep and returns the trimmed non-empty parts.
func splitNonEmpty(s, sep string) []string {
	var parts []string
	for _, p := range strings.Split(s, sep) {
		if t := strings.TrimSpace(p); t != "" {
			parts = append(parts, t)
		}
	}
	return parts
}

// matchWarnings returns one warning per denylisted term found in the prompt.
func matchWarnings(prompt string) []string {
	lower := strings.ToLower(prompt)
	warnings := []string{}
	for _, term := range sensitiveTerms {
		if strings.Contains(lower, term) {
			warnings = append(warnings, fmt.Sprintf("prompt contains sensitive term %q", term))
		}
	}
	return warnings
}

// estimateSeconds returns a static generation time estimate keyed by model
// quality and resolution.
func estimateSeconds(quality job.Quality, resolution string) int {
	if quality == job.QualityFast {
		if strings.Contains(resolution, "720") {
			return 5
		}
		return 20
	}
	if strings.Contains(resolution, "1080") {
		return 80
	}
	return 40
}
