package prompt

import (
	"fmt"
	"strings"

	"autoblogger/internal/domain"
	"autoblogger/internal/postprocess"
)

const (
	// maxSeedTags caps how many existing site tags are offered for reuse.
	maxSeedTags = 200
	targetTags  = 5
)

// Options carries per-run context that is not part of the template.
type Options struct {
	// SiteTags seeds the tagging instructions with existing tag names.
	SiteTags []string
}

// BuildSystemPrompt assembles the system prompt from template fields in a
// fixed section order, so the same template and options always produce the
// same prompt.
func BuildSystemPrompt(tpl domain.Template, opts Options) string {
	var b strings.Builder

	b.WriteString("You are an expert SEO content writer.")
	if tpl.Persona != "" {
		fmt.Fprintf(&b, " Your target audience is: %s.", tpl.Persona)
	}
	if tpl.Intent != "" {
		fmt.Fprintf(&b, " The search intent is %s.", tpl.Intent)
	}

	b.WriteString("\n\nFormat Requirements:")
	if tpl.ArticleType != "" {
		fmt.Fprintf(&b, "\n- Article Type: %s", tpl.ArticleType)
	}
	if tpl.MinWords > 0 {
		fmt.Fprintf(&b, "\n- Minimum Words: %d", tpl.MinWords)
	}
	if tpl.MaxWords > 0 {
		fmt.Fprintf(&b, "\n- Maximum Words: %d", tpl.MaxWords)
	}
	b.WriteString("\n- Use proper HTML tags (h1, h2, h3, p, ul, table).")
	b.WriteString("\n- The first line must be the <h1>Title</h1>.")

	if tpl.Outline != "" {
		fmt.Fprintf(&b, "\n- Follow this exact outline. Keep every %s marker on its own line, unchanged:\n%s",
			postprocess.ImagePlaceholder, tpl.Outline)
	} else if tpl.Headings != "" {
		fmt.Fprintf(&b, "\n- You MUST include these headings (or similar):\n%s", tpl.Headings)
	}

	if tpl.Tone != "" {
		fmt.Fprintf(&b, "\n\nTone of Voice: %s", tpl.Tone)
	}
	if tpl.Readability != "" {
		fmt.Fprintf(&b, "\nReadability Level: %s", tpl.Readability)
	}
	if tpl.AvoidWords != "" {
		fmt.Fprintf(&b, "\nAvoid these words: %s", tpl.AvoidWords)
	}

	b.WriteString("\n\nSEO Rules:")
	b.WriteString("\n- Include the keyword naturally in the h1, introduction, and at least one h2.")
	b.WriteString("\n- Add a 'Key Takeaways' table or list if appropriate.")

	if links := parseInternalLinks(tpl.InternalLinks); len(links) > 0 {
		b.WriteString("\n- Weave in these internal links where the context fits (format as <a href=\"URL\">anchor</a>):")
		for _, l := range links {
			fmt.Fprintf(&b, "\n  - %s (context: %s)", l.URL, l.Context)
		}
	}

	if tpl.WantsSchema() {
		fmt.Fprintf(&b, "\n- Structure the content to support %s schema (e.g. if FAQ, use proper Q&A format).", tpl.SchemaType)
	}

	writeTagInstructions(&b, opts.SiteTags)

	if tpl.WantsImages() && tpl.Outline == "" {
		b.WriteString("\n\nAfter each h2 heading, add an HTML comment with a short, descriptive stock-photo search query for that section, formatted exactly as: <!-- IMAGE_QUERY: query here -->")
	}

	b.WriteString("\n\nIMPORTANT: Return ONLY the raw HTML content for the body of the post. Do not include markdown code blocks (```html). Start directly with the <h1> tag.")

	return b.String()
}

// BuildUserPrompt is the user half of the prompt pair.
func BuildUserPrompt(topic string) string {
	return fmt.Sprintf("Write an article about: %s. Return ONLY the HTML content (starting with h1).", topic)
}

// BuildSchemaPrompt requests a JSON-LD blob for an already generated article.
func BuildSchemaPrompt(schemaType, title, body string) (system, user string) {
	system = "You generate valid schema.org JSON-LD. Return ONLY the JSON object, no markdown fences, no commentary."
	user = fmt.Sprintf("Generate %s JSON-LD for this article titled %q:\n\n%s",
		schemaType, title, postprocess.StripTags(body))
	return system, user
}

type internalLink struct {
	URL     string
	Context string
}

// parseInternalLinks reads "URL | context" lines; a missing context defaults
// to letting the model decide.
func parseInternalLinks(raw string) []internalLink {
	var links []internalLink
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		url, context, found := strings.Cut(line, "|")
		link := internalLink{URL: strings.TrimSpace(url), Context: "let the model decide"}
		if found && strings.TrimSpace(context) != "" {
			link.Context = strings.TrimSpace(context)
		}
		if link.URL != "" {
			links = append(links, link)
		}
	}
	return links
}

func writeTagInstructions(b *strings.Builder, siteTags []string) {
	b.WriteString("\n\nTagging:")
	fmt.Fprintf(b, "\n- End the article with a hidden comment listing exactly %d tags, formatted as: <!-- TAGS: tag1, tag2, tag3, tag4, tag5 -->", targetTags)

	if len(siteTags) == 0 {
		return
	}
	if len(siteTags) > maxSeedTags {
		siteTags = siteTags[:maxSeedTags]
	}
	fmt.Fprintf(b, "\n- Prefer reusing these existing site tags where they fit, then invent new ones to reach %d total:\n%s",
		targetTags, strings.Join(siteTags, ", "))
}
