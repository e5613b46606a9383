package prompt

import (
	"strings"
	"testing"

	"autoblogger/internal/domain"
)

func TestBuildSystemPromptDeterministic(t *testing.T) {
	t.Parallel()

	tpl := domain.Template{
		Persona:     "Beginner gardeners",
		Intent:      "informational",
		ArticleType: "howto",
		MinWords:    800,
		MaxWords:    1200,
		Headings:    "Getting Started\nCommon Mistakes",
		Tone:        "Friendly",
	}
	opts := Options{SiteTags: []string{"garden", "diy"}}

	first := BuildSystemPrompt(tpl, opts)
	second := BuildSystemPrompt(tpl, opts)
	if first != second {
		t.Fatalf("same inputs must produce the same prompt")
	}
	for _, want := range []string{"Beginner gardeners", "Minimum Words: 800", "Getting Started", "Friendly", "garden, diy"} {
		if !strings.Contains(first, want) {
			t.Fatalf("prompt missing %q:\n%s", want, first)
		}
	}
}

func TestBuildSystemPromptOutlineReplacesHeadings(t *testing.T) {
	t.Parallel()

	tpl := domain.Template{
		Headings: "Ignored Heading",
		Outline:  "<h2>Fixed Section</h2>\n[IMAGE_HERE]",
	}
	got := BuildSystemPrompt(tpl, Options{})

	if !strings.Contains(got, "Fixed Section") {
		t.Fatalf("outline missing from prompt:\n%s", got)
	}
	if strings.Contains(got, "Ignored Heading") {
		t.Fatalf("headings must be ignored when an outline is set:\n%s", got)
	}
	if !strings.Contains(got, "[IMAGE_HERE]") {
		t.Fatalf("outline must carry the placeholder instruction:\n%s", got)
	}
}

func TestBuildSystemPromptImageQueryInstruction(t *testing.T) {
	t.Parallel()

	withImages := domain.Template{ImageProvider: "unsplash", ImageCount: 3}
	if got := BuildSystemPrompt(withImages, Options{}); !strings.Contains(got, "IMAGE_QUERY") {
		t.Fatalf("expected image query instruction:\n%s", got)
	}

	// An explicit outline positions images itself; hints would conflict.
	withOutline := domain.Template{ImageProvider: "unsplash", ImageCount: 3, Outline: "<h2>A</h2>"}
	if got := BuildSystemPrompt(withOutline, Options{}); strings.Contains(got, "IMAGE_QUERY") {
		t.Fatalf("outline templates must not request hints:\n%s", got)
	}

	noImages := domain.Template{ImageProvider: domain.ImageProviderNone}
	if got := BuildSystemPrompt(noImages, Options{}); strings.Contains(got, "IMAGE_QUERY") {
		t.Fatalf("image-free templates must not request hints:\n%s", got)
	}
}

func TestBuildSystemPromptSchemaHint(t *testing.T) {
	t.Parallel()

	tpl := domain.Template{SchemaType: "FAQPage"}
	if got := BuildSystemPrompt(tpl, Options{}); !strings.Contains(got, "FAQPage schema") {
		t.Fatalf("expected schema structuring hint:\n%s", got)
	}

	plain := domain.Template{SchemaType: domain.DefaultSchemaType}
	if got := BuildSystemPrompt(plain, Options{}); strings.Contains(got, "schema (e.g.") {
		t.Fatalf("default schema type needs no hint:\n%s", got)
	}
}

func TestParseInternalLinksDefaultsContext(t *testing.T) {
	t.Parallel()

	tpl := domain.Template{InternalLinks: "https://example.com/a | soil guide\nhttps://example.com/b\n\n| no url"}
	got := BuildSystemPrompt(tpl, Options{})

	if !strings.Contains(got, "https://example.com/a (context: soil guide)") {
		t.Fatalf("explicit context missing:\n%s", got)
	}
	if !strings.Contains(got, "https://example.com/b (context: let the model decide)") {
		t.Fatalf("default context missing:\n%s", got)
	}
	if strings.Contains(got, "no url") {
		t.Fatalf("lines without a URL must be dropped:\n%s", got)
	}
}

func TestBuildImageQueryPromptNumbersWindows(t *testing.T) {
	t.Parallel()

	system, user := BuildImageQueryPrompt("rooftop gardens", []string{"first window", "second window"})
	if !strings.Contains(system, "STRICT JSON") {
		t.Fatalf("system prompt missing JSON contract:\n%s", system)
	}
	if !strings.Contains(user, "Excerpt 1:\nfirst window") || !strings.Contains(user, "Excerpt 2:\nsecond window") {
		t.Fatalf("excerpts missing or out of order:\n%s", user)
	}
}

func TestParseTopicListStopsAtCount(t *testing.T) {
	t.Parallel()

	raw := "One\nTwo\nThree\nFour"
	got := ParseTopicList(raw, 2)
	if len(got) != 2 || got[0] != "One" || got[1] != "Two" {
		t.Fatalf("unexpected topics: %v", got)
	}
}
