package spam_test

import (
	"strings"
	"testing"

	"skripta.hr/forum/internal/spam"
)

func TestModerateCleanContent(t *testing.T) {
	result := spam.Moderate("Pitanje o kolokviju", "Ima li netko stara pitanja?")
	if !result.Approved {
		t.Fatalf("clean content rejected: %s", result.Reason)
	}
	if result.Severity != spam.SeverityNone {
		t.Fatalf("expected no severity, got %q", result.Severity)
	}
	if result.Title != "Pitanje o kolokviju" || result.Content != "Ima li netko stara pitanja?" {
		t.Fatalf("clean content was altered: %q / %q", result.Title, result.Content)
	}
}

func TestModerateCensorsMildLanguage(t *testing.T) {
	result := spam.Moderate("Profesor je glupan", "Koji glupan je ovo složio?")
	if !result.Approved {
		t.Fatalf("mild language should be censored, not rejected: %s", result.Reason)
	}
	if result.Severity != spam.SeverityLow {
		t.Fatalf("expected severity %q, got %q", spam.SeverityLow, result.Severity)
	}
	if strings.Contains(strings.ToLower(result.Title), "glupan") {
		t.Fatalf("title not censored: %q", result.Title)
	}
	if !strings.Contains(result.Title, "******") {
		t.Fatalf("expected asterisk mask in title, got %q", result.Title)
	}
	if strings.Contains(strings.ToLower(result.Content), "glupan") {
		t.Fatalf("content not censored: %q", result.Content)
	}
}

func TestModerateCensorsMixedCase(t *testing.T) {
	result := spam.Moderate("", "GLUPAN jedan")
	if !result.Approved || result.Severity != spam.SeverityLow {
		t.Fatalf("expected low-severity approval, got approved=%v severity=%q", result.Approved, result.Severity)
	}
	if result.Content != "****** jedan" {
		t.Fatalf("unexpected censored content %q", result.Content)
	}
}

func TestModerateRejectsSevereLanguage(t *testing.T) {
	result := spam.Moderate("Rasprava", "crkni")
	if result.Approved {
		t.Fatalf("severe language should be rejected")
	}
	if result.Severity != spam.SeverityHigh {
		t.Fatalf("expected severity %q, got %q", spam.SeverityHigh, result.Severity)
	}
	if result.Reason == "" {
		t.Fatalf("expected a rejection reason")
	}
}

func TestSanitizeHTMLStripsScripts(t *testing.T) {
	got := spam.SanitizeHTML(`<p>bok</p><script>alert("x")</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Fatalf("script markup survived sanitization: %q", got)
	}
	if !strings.Contains(got, "<p>bok</p>") {
		t.Fatalf("benign markup was stripped: %q", got)
	}
}
