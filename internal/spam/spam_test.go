package spam_test

import (
	"strings"
	"testing"
	"time"

	"skripta.hr/forum/internal/spam"
)

func TestDetectSpamCleanContent(t *testing.T) {
	result := spam.DetectSpam("Može li mi netko objasniti drugi zadatak s prošlog kolokvija?")
	if result.IsSpam {
		t.Fatalf("clean content flagged as spam: %s", result.Reason)
	}
}

func TestDetectSpamEmptyContent(t *testing.T) {
	if result := spam.DetectSpam("   "); result.IsSpam {
		t.Fatalf("whitespace-only content flagged as spam: %s", result.Reason)
	}
}

func TestDetectSpamTooManyLinks(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 6; i++ {
		b.WriteString("pogledajte https://example.com/stranica ")
	}

	result := spam.DetectSpam(b.String())
	if !result.IsSpam {
		t.Fatalf("expected link flooding to be flagged")
	}
	if result.Reason != "previše poveznica" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestDetectSpamFewLinksAllowed(t *testing.T) {
	text := "Materijali su na https://example.com/a i https://example.com/b"
	if result := spam.DetectSpam(text); result.IsSpam {
		t.Fatalf("two links flagged as spam: %s", result.Reason)
	}
}

func TestDetectSpamExcessiveCaps(t *testing.T) {
	result := spam.DetectSpam("HITNO TREBAM POMOĆ OKO ZADATKA ODMAH")
	if !result.IsSpam {
		t.Fatalf("expected shouting to be flagged")
	}
	if result.Reason != "previše velikih slova" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestDetectSpamShortCapsAllowed(t *testing.T) {
	// Short text is exempt from the caps ratio check.
	if result := spam.DetectSpam("HITNO POMOĆ"); result.IsSpam {
		t.Fatalf("short caps text flagged as spam: %s", result.Reason)
	}
}

func TestDetectSpamCharacterFlood(t *testing.T) {
	result := spam.DetectSpam("molim pomoć aaaaaaaaaaaaaa")
	if !result.IsSpam {
		t.Fatalf("expected character flooding to be flagged")
	}
	if result.Reason != "ponavljanje znakova" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestDetectDuplicateWithinWindow(t *testing.T) {
	now := time.Now()
	recent := []spam.RecentPost{
		{Content: "Prodajem skriptu iz matematike!", CreatedAt: now.Add(-2 * time.Minute)},
	}

	result := spam.DetectDuplicate("prodajem skriptu iz matematike", recent, spam.DuplicateWindow, now)
	if !result.IsSpam {
		t.Fatalf("expected normalized duplicate to be flagged")
	}
	if result.Reason != "dupliciran sadržaj" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestDetectDuplicateOutsideWindow(t *testing.T) {
	now := time.Now()
	recent := []spam.RecentPost{
		{Content: "Prodajem skriptu iz matematike", CreatedAt: now.Add(-15 * time.Minute)},
	}

	result := spam.DetectDuplicate("Prodajem skriptu iz matematike", recent, spam.DuplicateWindow, now)
	if result.IsSpam {
		t.Fatalf("post outside the window flagged as duplicate")
	}
}

func TestDetectDuplicateDifferentContent(t *testing.T) {
	now := time.Now()
	recent := []spam.RecentPost{
		{Content: "Prodajem skriptu iz matematike", CreatedAt: now.Add(-1 * time.Minute)},
	}

	result := spam.DetectDuplicate("Tražim skriptu iz fizike", recent, spam.DuplicateWindow, now)
	if result.IsSpam {
		t.Fatalf("distinct content flagged as duplicate")
	}
}

func TestDetectRapidPosting(t *testing.T) {
	now := time.Now()
	recent := []spam.RecentPost{
		{Content: "prva", CreatedAt: now.Add(-10 * time.Second)},
		{Content: "druga", CreatedAt: now.Add(-30 * time.Second)},
	}

	result := spam.DetectRapidPosting(recent, spam.MaxTopicsPerMin, now)
	if !result.IsSpam {
		t.Fatalf("expected rapid posting to be flagged at the limit")
	}
	if result.Reason != "prebrzo objavljivanje" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestDetectRapidPostingUnderLimit(t *testing.T) {
	now := time.Now()
	recent := []spam.RecentPost{
		{Content: "prva", CreatedAt: now.Add(-10 * time.Second)},
		{Content: "stara", CreatedAt: now.Add(-5 * time.Minute)},
	}

	result := spam.DetectRapidPosting(recent, spam.MaxTopicsPerMin, now)
	if result.IsSpam {
		t.Fatalf("single recent post flagged as rapid posting")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Pozdrav   svima!  ", "pozdrav svima"},
		{"PRODAJEM, skriptu...", "prodajem skriptu"},
		{"čćžšđ OSTAJU", "čćžšđ ostaju"},
		{"!!!", ""},
	}

	for _, tc := range cases {
		if got := spam.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
