package prompt

import (
	"fmt"
	"strings"
)

// BuildSingleTopicPrompt asks for exactly one new topic for a niche, steering
// away from recently published titles.
func BuildSingleTopicPrompt(broadTopic string, recentTitles []string) (system, user string) {
	system = "You are a helpful assistant."

	var b strings.Builder
	fmt.Fprintf(&b, "I need exactly ONE blog post topic idea for the niche: '%s'.\n", broadTopic)
	if len(recentTitles) > 0 {
		fmt.Fprintf(&b, "Do not repeat these:\n- %s\n\n", strings.Join(recentTitles, "\n- "))
	}
	b.WriteString("Return ONLY the title string. No quotes, no numbering.")
	return system, b.String()
}

// BuildTopicBatchPrompt asks for count new topic ideas, excluding titles
// published in the recent-history window.
func BuildTopicBatchPrompt(broadTopic string, count, days int, recentTitles []string) (system, user string) {
	system = "You are a helpful content strategist."

	var b strings.Builder
	fmt.Fprintf(&b, "I need %d blog post topic ideas for the niche: '%s'.\n", count, broadTopic)
	if len(recentTitles) > 0 {
		fmt.Fprintf(&b, "Here are the topics I have ALREADY covered in the last %d days (DO NOT REPEAT THESE):\n- %s\n\n",
			days, strings.Join(recentTitles, "\n- "))
	}
	fmt.Fprintf(&b, "Generate %d NEW, unique, click-worthy titles. Return ONLY the titles as a simple list (one per line). Do not number them.", count)
	return system, b.String()
}

// BuildImageQueryPrompt asks for one descriptive stock-photo query per text
// window plus a featured query, as strict JSON.
func BuildImageQueryPrompt(topic string, windows []string) (system, user string) {
	system = "You write stock-photo search queries. Respond with STRICT JSON only: {\"featured\": \"...\", \"segments\": [\"...\"]} with one segment query per numbered text excerpt, in order. No markdown fences, no commentary."

	var b strings.Builder
	fmt.Fprintf(&b, "Article topic: %s\n\n", topic)
	fmt.Fprintf(&b, "For the featured query and for each of the %d excerpts below, produce one short, descriptive, visual search query. Avoid generic terms like 'business' or 'technology'.\n", len(windows))
	for i, w := range windows {
		fmt.Fprintf(&b, "\nExcerpt %d:\n%s\n", i+1, w)
	}
	return system, b.String()
}

// ParseTopicList splits a model response into clean topic lines, stripping
// bullets and leading numbering, keeping at most count entries.
func ParseTopicList(raw string, count int) []string {
	var topics []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		line = strings.TrimLeft(line, "0123456789.) ")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		topics = append(topics, line)
		if len(topics) == count {
			break
		}
	}
	return topics
}
