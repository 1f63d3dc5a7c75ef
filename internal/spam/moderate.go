package spam

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Severity levels assigned by content moderation. Low severity censors the
// offending words and lets the post through as flagged; higher severities
// reject the submission outright.
const (
	SeverityNone   = ""
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ModerationResult carries the possibly-censored text back to the caller.
type ModerationResult struct {
	Approved bool
	Reason   string
	Severity string
	Title    string
	Content  string
}

// Word lists are intentionally short; the point is the pipeline, not lexicon
// completeness.
var mildWords = []string{"glupan", "idiot", "kreten", "budala"}
var severeWords = []string{"mrš", "crkni", "ubij se"}

// Moderate runs the content-moderation pass over a submission. Mild profanity
// is censored in place (severity low); severe language rejects the post.
func Moderate(title, content string) ModerationResult {
	lowerAll := strings.ToLower(title + " " + content)

	for _, w := range severeWords {
		if strings.Contains(lowerAll, w) {
			return ModerationResult{
				Approved: false,
				Reason:   "Sadržaj sadrži neprimjeren jezik",
				Severity: SeverityHigh,
			}
		}
	}

	severity := SeverityNone
	censoredTitle := title
	censoredContent := content
	for _, w := range mildWords {
		if containsFold(censoredTitle, w) || containsFold(censoredContent, w) {
			severity = SeverityLow
			censoredTitle = censorFold(censoredTitle, w)
			censoredContent = censorFold(censoredContent, w)
		}
	}

	return ModerationResult{
		Approved: true,
		Severity: severity,
		Title:    censoredTitle,
		Content:  censoredContent,
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}

// censorFold replaces every case-insensitive occurrence of word with
// asterisks of the same length.
func censorFold(s, word string) string {
	lower := strings.ToLower(s)
	mask := strings.Repeat("*", len([]rune(word)))

	var b strings.Builder
	for {
		i := strings.Index(lower, word)
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		b.WriteString(mask)
		s = s[i+len(word):]
		lower = lower[i+len(word):]
	}
	return b.String()
}

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeHTML strips dangerous markup from user-submitted content before it
// is stored.
func SanitizeHTML(s string) string {
	return ugcPolicy.Sanitize(s)
}
