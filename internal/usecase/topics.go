package usecase

import (
	"context"
	"fmt"
	"strings"

	"autoblogger/internal/ports"
	"autoblogger/internal/prompt"
)

const (
	// singleTopicHistory bounds the recent-title context for one-off
	// synthesis during infinite-mode runs.
	singleTopicHistory = 20
	// batchTopicHistory bounds the history list in batch idea generation so
	// a busy site does not blow up the prompt.
	batchTopicHistory = 100

	defaultBatchCount = 10
	maxBatchCount     = 50
	defaultBatchDays  = 30
)

// TopicSynthesizer turns a broad topic into concrete article topics via the
// provider, steering away from recently published titles.
type TopicSynthesizer struct {
	providers ports.ProviderResolver
	articles  ports.ArticleStore
}

// NewTopicSynthesizer wires the synthesizer.
func NewTopicSynthesizer(providers ports.ProviderResolver, articles ports.ArticleStore) *TopicSynthesizer {
	return &TopicSynthesizer{providers: providers, articles: articles}
}

// SynthesizeOne produces exactly one fresh topic. The scheduler calls this
// when an infinite-mode queue runs dry.
func (t *TopicSynthesizer) SynthesizeOne(ctx context.Context, broadTopic, providerName, model string) (string, error) {
	if strings.TrimSpace(broadTopic) == "" {
		return "", fmt.Errorf("broad topic is empty")
	}

	provider, err := t.providers.ResolveProvider(providerName)
	if err != nil {
		return "", fmt.Errorf("resolve provider: %w", err)
	}

	titles, err := t.articles.RecentTitles(ctx, 0, singleTopicHistory)
	if err != nil {
		titles = nil
	}

	system, user := prompt.BuildSingleTopicPrompt(broadTopic, titles)
	raw, err := provider.GenerateContent(ctx, system, user, model)
	if err != nil {
		return "", fmt.Errorf("synthesize topic: %w", err)
	}

	topic := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if topic == "" {
		return "", fmt.Errorf("provider returned an empty topic")
	}
	return topic, nil
}

// SynthesizeBatch produces up to count topic ideas for operator review,
// excluding titles published within the last days. Count is clamped to
// 1..50; non-positive inputs fall back to the defaults.
func (t *TopicSynthesizer) SynthesizeBatch(ctx context.Context, broadTopic string, count, days int, providerName, model string) ([]string, error) {
	if strings.TrimSpace(broadTopic) == "" {
		return nil, fmt.Errorf("broad topic is empty")
	}
	if count < 1 {
		count = defaultBatchCount
	}
	if count > maxBatchCount {
		count = maxBatchCount
	}
	if days < 1 {
		days = defaultBatchDays
	}

	provider, err := t.providers.ResolveProvider(providerName)
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}

	titles, err := t.articles.RecentTitles(ctx, days, batchTopicHistory)
	if err != nil {
		titles = nil
	}

	system, user := prompt.BuildTopicBatchPrompt(broadTopic, count, days, titles)
	raw, err := provider.GenerateContent(ctx, system, user, model)
	if err != nil {
		return nil, fmt.Errorf("synthesize topics: %w", err)
	}

	topics := prompt.ParseTopicList(raw, count)
	if len(topics) == 0 {
		return nil, fmt.Errorf("provider returned no usable topics")
	}
	return topics, nil
}
