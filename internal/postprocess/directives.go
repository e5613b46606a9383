package postprocess

import "regexp"

// The model embeds structured directives inside otherwise free-form HTML.
// This file is the single definition of that small text protocol: every
// token, its capture group, and the removal rule live here so extraction is
// never re-derived ad hoc elsewhere.

// ImagePlaceholder is the reserved standalone marker an explicit outline uses
// to request an image at a precise position in the document.
const ImagePlaceholder = "[IMAGE_HERE]"

var (
	// ```html fence prefix / ``` suffix the model sometimes wraps output in.
	fencePrefix = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*")
	fenceSuffix = regexp.MustCompile("(?s)\\s*```\\s*$")

	// First top-level heading; group 1 is the title markup.
	titleExpr = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)

	// Trailing hidden tag list: <!-- TAGS: a, b, c -->.
	tagsExpr = regexp.MustCompile(`(?i)<!--\s*TAGS:\s*(.*?)\s*-->`)

	// Per-section image hint: <!-- IMAGE_QUERY: ... --> following a heading.
	imageQueryExpr = regexp.MustCompile(`(?i)<!--\s*IMAGE_QUERY:\s*(.*?)\s*-->`)

	// Literal [IMAGE_HERE] occurrences, matched for counting and replacement.
	placeholderExpr = regexp.MustCompile(regexp.QuoteMeta(ImagePlaceholder))

	htmlTagExpr = regexp.MustCompile(`<[^>]*>`)
)

// StripFences removes a leading ```html marker and a trailing ``` marker if
// the model wrapped its output in a code block.
func StripFences(raw string) string {
	raw = fencePrefix.ReplaceAllString(raw, "")
	raw = fenceSuffix.ReplaceAllString(raw, "")
	return raw
}

// StripTags flattens markup to plain text.
func StripTags(markup string) string {
	return htmlTagExpr.ReplaceAllString(markup, "")
}

// CountPlaceholders reports how many image placeholders the body contains.
func CountPlaceholders(body string) int {
	return len(placeholderExpr.FindAllStringIndex(body, -1))
}

// ReplaceNextPlaceholder substitutes the first remaining placeholder with the
// given markup and reports whether one was found.
func ReplaceNextPlaceholder(body, markup string) (string, bool) {
	loc := placeholderExpr.FindStringIndex(body)
	if loc == nil {
		return body, false
	}
	return body[:loc[0]] + markup + body[loc[1]:], true
}
