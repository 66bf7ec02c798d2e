package naming_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"reelvault/internal/naming"
)

func TestGenerateFileNameDeterministic(t *testing.T) {
	first := naming.GenerateFileName("Jordan Doe", "Acme Corp", "Systems", "2026-03-14", ".mp4")
	second := naming.GenerateFileName("Jordan Doe", "Acme Corp", "Systems", "2026-03-14", ".mp4")
	if first != second {
		t.Fatalf("expected identical output, got %q and %q", first, second)
	}
	if first != "Jordan_Doe_Acme_Corp_Systems_2026-03-14.mp4" {
		t.Fatalf("unexpected name: %q", first)
	}
}

func TestGenerateFileNameDefaultsExtension(t *testing.T) {
	name := naming.GenerateFileName("A", "B", "C", "2026-01-02", "")
	if !strings.HasSuffix(name, ".mp4") {
		t.Fatalf("expected .mp4 default, got %q", name)
	}
}

func TestSanitizeStripsHostileCharacters(t *testing.T) {
	out := naming.Sanitize(`O'Neill <Staff/Lead>: "A\B|C?*"`)
	for _, ch := range `<>:"/\|?*'` {
		if strings.ContainsRune(out, ch) {
			t.Fatalf("output %q contains hostile character %q", out, ch)
		}
	}
}

func TestSanitizeMapsAmpersandAndCollapses(t *testing.T) {
	out := naming.Sanitize("Smith  &   Sons___Ltd")
	if out != "Smith_and_Sons_Ltd" {
		t.Fatalf("unexpected sanitized value: %q", out)
	}
}

func TestSanitizeTruncates(t *testing.T) {
	out := naming.Sanitize(strings.Repeat("a", 500))
	if len(out) != 200 {
		t.Fatalf("length = %d, want 200", len(out))
	}
}

func TestSanitizeTruncatesByRunesNotBytes(t *testing.T) {
	out := naming.Sanitize(strings.Repeat("日", 250))
	if got := utf8.RuneCountInString(out); got != 200 {
		t.Fatalf("rune count = %d, want 200", got)
	}
	if !utf8.ValidString(out) {
		t.Fatalf("truncation produced invalid UTF-8: %q", out)
	}
}

func TestSanitizeKeepsMultibyteUnderLimit(t *testing.T) {
	in := strings.Repeat("é", 150)
	if out := naming.Sanitize(in); out != in {
		t.Fatalf("150-character input should pass untouched, got %d characters", utf8.RuneCountInString(out))
	}
}

func TestNormalizeDateForms(t *testing.T) {
	cases := map[string]string{
		"2026-03-14":                "2026-03-14",
		"2026-03-14T09:30:00Z":      "2026-03-14",
		"2026-03-14T09:30:00+02:00": "2026-03-14",
		"2026-03-14 09:30:00":       "2026-03-14",
		"03/14/2026":                "2026-03-14",
		"March 14, 2026":            "2026-03-14",
	}
	for input, want := range cases {
		if got := naming.NormalizeDate(input); got != want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeDatePassesThroughUnknown(t *testing.T) {
	if got := naming.NormalizeDate("sometime soon?"); got != "sometime_soon" {
		t.Fatalf("unexpected passthrough: %q", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := naming.DisplayTitle("jordan doe"); got != "Jordan Doe" {
		t.Fatalf("DisplayTitle = %q", got)
	}
}
