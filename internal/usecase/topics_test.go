package usecase

import (
	"context"
	"strings"
	"testing"
)

func TestSynthesizeOneStripsQuotes(t *testing.T) {
	t.Parallel()

	s := NewTopicSynthesizer(
		&fakeProviderResolver{provider: staticProvider("openai", "\"Best Soil for Monstera\"\n")},
		newFakeArticleStore(),
	)

	topic, err := s.SynthesizeOne(context.Background(), "houseplants", "openai", "")
	if err != nil {
		t.Fatalf("SynthesizeOne error: %v", err)
	}
	if topic != "Best Soil for Monstera" {
		t.Fatalf("unexpected topic: %q", topic)
	}
}

func TestSynthesizeOneRejectsEmptyNiche(t *testing.T) {
	t.Parallel()

	s := NewTopicSynthesizer(
		&fakeProviderResolver{provider: staticProvider("openai", "anything")},
		newFakeArticleStore(),
	)

	if _, err := s.SynthesizeOne(context.Background(), "  ", "openai", ""); err == nil {
		t.Fatalf("expected error for empty broad topic")
	}
}

func TestSynthesizeOneIncludesHistory(t *testing.T) {
	t.Parallel()

	provider := staticProvider("openai", "Fresh Topic")
	articles := newFakeArticleStore()
	articles.titles = []string{"Covered Already"}
	s := NewTopicSynthesizer(&fakeProviderResolver{provider: provider}, articles)

	if _, err := s.SynthesizeOne(context.Background(), "gardening", "openai", ""); err != nil {
		t.Fatalf("SynthesizeOne error: %v", err)
	}
	if len(provider.requests) != 1 || !strings.Contains(provider.requests[0], "Covered Already") {
		t.Fatalf("expected history in prompt, got %v", provider.requests)
	}
}

func TestSynthesizeBatchClampsCount(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 80; i++ {
		lines = append(lines, "Topic idea")
	}
	s := NewTopicSynthesizer(
		&fakeProviderResolver{provider: staticProvider("openai", strings.Join(lines, "\n"))},
		newFakeArticleStore(),
	)

	topics, err := s.SynthesizeBatch(context.Background(), "gardening", 500, 30, "openai", "")
	if err != nil {
		t.Fatalf("SynthesizeBatch error: %v", err)
	}
	if len(topics) != 50 {
		t.Fatalf("expected count clamped to 50, got %d", len(topics))
	}
}

func TestSynthesizeBatchParsesNumberedList(t *testing.T) {
	t.Parallel()

	raw := "1. First Idea\n2) Second Idea\n- Third Idea\n\n\"Fourth Idea\""
	s := NewTopicSynthesizer(
		&fakeProviderResolver{provider: staticProvider("openai", raw)},
		newFakeArticleStore(),
	)

	topics, err := s.SynthesizeBatch(context.Background(), "gardening", 10, 30, "openai", "")
	if err != nil {
		t.Fatalf("SynthesizeBatch error: %v", err)
	}
	want := []string{"First Idea", "Second Idea", "Third Idea", "Fourth Idea"}
	if len(topics) != len(want) {
		t.Fatalf("expected %d topics, got %d: %v", len(want), len(topics), topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Fatalf("topic %d: expected %q, got %q", i, want[i], topics[i])
		}
	}
}

func TestSynthesizeBatchEmptyResponse(t *testing.T) {
	t.Parallel()

	s := NewTopicSynthesizer(
		&fakeProviderResolver{provider: staticProvider("openai", "   \n  ")},
		newFakeArticleStore(),
	)

	if _, err := s.SynthesizeBatch(context.Background(), "gardening", 10, 30, "openai", ""); err == nil {
		t.Fatalf("expected error for empty topic list")
	}
}
