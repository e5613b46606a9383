package postprocess

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"autoblogger/internal/domain"
)

const metaDescriptionLimit = 155

// ImageHint pairs one extracted per-section query with its document position.
// Pairing is positional: the Nth hint belongs to the Nth h2 heading. The
// association is built once here so later passes never re-scan the text.
type ImageHint struct {
	Index   int
	Heading string
	Query   string
}

// Result is the structured form of one model response.
type Result struct {
	Title           string
	Body            string
	MetaDescription string
	Tags            []string
	ImageHints      []ImageHint
	// Placeholders counts [IMAGE_HERE] tokens remaining in Body; a non-zero
	// count selects the explicit-placeholder image strategy.
	Placeholders int
}

// Process parses a raw model response defensively: the model is untrusted
// free text, so every directive is optional and extraction tolerates case
// variation. Absence of a directive never fails the pipeline.
func Process(raw, topic string, tpl domain.Template, now time.Time) Result {
	body := StripFences(raw)
	body = strings.TrimSpace(body)

	var res Result
	res.Title, body = extractTitle(body, topic, tpl, now)
	res.Tags, body = extractTags(body, tpl)
	res.ImageHints, body = extractImageHints(body)

	body = strings.TrimSpace(body)
	res.Body = body
	res.Placeholders = CountPlaceholders(body)
	res.MetaDescription = metaDescription(body, topic, tpl, now)
	return res
}

func extractTitle(body, topic string, tpl domain.Template, now time.Time) (string, string) {
	if m := titleExpr.FindStringSubmatch(body); m != nil {
		title := strings.TrimSpace(StripTags(m[1]))
		// The persistence layer renders its own title, so the h1 leaves the body.
		body = strings.Replace(body, m[0], "", 1)
		if title != "" {
			return title, body
		}
	}
	if tpl.TitleFormula != "" {
		return ApplyFormula(tpl.TitleFormula, topic, now), body
	}
	return topic, body
}

func extractTags(body string, tpl domain.Template) ([]string, string) {
	m := tagsExpr.FindStringSubmatch(body)
	if m == nil {
		return append([]string(nil), tpl.DefaultTags...), body
	}
	body = strings.Replace(body, m[0], "", 1)

	var tags []string
	for _, t := range strings.Split(m[1], ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, tpl.DefaultTags...)
	}
	return tags, body
}

func extractImageHints(body string) ([]ImageHint, string) {
	matches := imageQueryExpr.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, body
	}

	headings := headingTexts(body)
	hints := make([]ImageHint, 0, len(matches))
	for i, m := range matches {
		hint := ImageHint{Index: i, Query: strings.TrimSpace(m[1])}
		if i < len(headings) {
			hint.Heading = headings[i]
		}
		hints = append(hints, hint)
		body = strings.Replace(body, m[0], "", 1)
	}
	return hints, body
}

func headingTexts(body string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	var headings []string
	doc.Find("h2").Each(func(_ int, sel *goquery.Selection) {
		headings = append(headings, strings.TrimSpace(sel.Text()))
	})
	return headings
}

func metaDescription(body, topic string, tpl domain.Template, now time.Time) string {
	if tpl.MetaDescFormula != "" {
		return ApplyFormula(tpl.MetaDescFormula, topic, now)
	}
	text := PlainText(body)
	if len(text) > metaDescriptionLimit {
		return text[:metaDescriptionLimit] + "..."
	}
	return text
}

// ApplyFormula substitutes the {keyword} and {year} tokens in title and
// meta-description formulas.
func ApplyFormula(formula, keyword string, now time.Time) string {
	replacer := strings.NewReplacer(
		"{keyword}", keyword,
		"{year}", fmt.Sprintf("%d", now.Year()),
	)
	return replacer.Replace(formula)
}

// PlainText renders markup to collapsed plain text.
func PlainText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(StripTags(markup))
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
