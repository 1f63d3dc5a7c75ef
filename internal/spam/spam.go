package spam

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// CheckResult is the outcome of one heuristic.
type CheckResult struct {
	IsSpam bool
	Reason string
}

// RecentPost is the slice of an author's posting history the heuristics need.
type RecentPost struct {
	Content   string
	CreatedAt time.Time
}

var linkPattern = regexp.MustCompile(`https?://[^\s]+`)

const (
	maxLinks        = 5
	maxCapsRatio    = 0.7
	minLenForCaps   = 20
	maxCharRepeat   = 10
	DuplicateWindow = 10 * time.Minute
	MaxTopicsPerMin = 2
)

// DetectSpam applies content-shape heuristics: link flooding, shouting,
// character flooding.
func DetectSpam(text string) CheckResult {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return CheckResult{}
	}

	if links := linkPattern.FindAllString(trimmed, -1); len(links) > maxLinks {
		return CheckResult{IsSpam: true, Reason: "previše poveznica"}
	}

	if len([]rune(trimmed)) >= minLenForCaps {
		var letters, upper int
		for _, r := range trimmed {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters > 0 && float64(upper)/float64(letters) > maxCapsRatio {
			return CheckResult{IsSpam: true, Reason: "previše velikih slova"}
		}
	}

	var prev rune
	repeat := 1
	for _, r := range trimmed {
		if r == prev {
			repeat++
			if repeat > maxCharRepeat {
				return CheckResult{IsSpam: true, Reason: "ponavljanje znakova"}
			}
		} else {
			repeat = 1
		}
		prev = r
	}

	return CheckResult{}
}

// DetectDuplicate flags content whose normalized text matches any of the
// author's recent posts inside the window.
func DetectDuplicate(content string, recent []RecentPost, window time.Duration, now time.Time) CheckResult {
	normalized := Normalize(content)
	if normalized == "" {
		return CheckResult{}
	}

	cutoff := now.Add(-window)
	for _, post := range recent {
		if post.CreatedAt.Before(cutoff) {
			continue
		}
		if Normalize(post.Content) == normalized {
			return CheckResult{IsSpam: true, Reason: "dupliciran sadržaj"}
		}
	}

	return CheckResult{}
}

// DetectRapidPosting flags authors exceeding maxPerMinute posts in the last
// minute.
func DetectRapidPosting(recent []RecentPost, maxPerMinute int, now time.Time) CheckResult {
	if maxPerMinute <= 0 {
		maxPerMinute = MaxTopicsPerMin
	}

	cutoff := now.Add(-time.Minute)
	count := 0
	for _, post := range recent {
		if !post.CreatedAt.Before(cutoff) {
			count++
		}
	}

	if count >= maxPerMinute {
		return CheckResult{IsSpam: true, Reason: "prebrzo objavljivanje"}
	}

	return CheckResult{}
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
var spaces = regexp.MustCompile(`\s+`)

// Normalize lowercases, strips punctuation and collapses whitespace so near
// copies compare equal.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWord.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
