package images

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"autoblogger/internal/domain"
	"autoblogger/internal/ports"
	"autoblogger/internal/postprocess"
	"autoblogger/internal/prompt"
)

const (
	// contextWindow bounds the plain-text excerpt taken after each insertion
	// point when deriving search queries.
	contextWindow = 300
	// Ledger filtering fetches an oversized candidate batch so that a strict
	// filter still leaves something usable.
	oversizeFloor  = 30
	oversizeFactor = 5
)

var paragraphEnd = regexp.MustCompile(`(?i)</p>`)

// Placer decides how many images to fetch, what query each placement uses,
// and where the resulting markup lands in the body. One of two strategies
// runs per article, chosen by content shape: explicit placeholder tokens, or
// automatic paragraph-interval segmentation.
type Placer struct {
	provider   ports.ContentProvider
	searcher   ports.ImageSearcher
	sideloader ports.ImageSideloader
	store      ports.ArticleStore
	ledger     *Ledger
	logger     *slog.Logger
	shuffle    func(n int, swap func(i, j int))
}

// NewPlacer wires the placement strategist. The provider generates search
// queries; the searcher and sideloader move the actual images.
func NewPlacer(provider ports.ContentProvider, searcher ports.ImageSearcher, sideloader ports.ImageSideloader, store ports.ArticleStore, ledger *Ledger, logger *slog.Logger) *Placer {
	if ledger == nil {
		ledger = NewLedger(0, nil)
	}
	return &Placer{
		provider:   provider,
		searcher:   searcher,
		sideloader: sideloader,
		store:      store,
		ledger:     ledger,
		logger:     logger,
		shuffle:    rand.Shuffle,
	}
}

// Request carries everything one placement run needs.
type Request struct {
	ArticleID string
	Body      string
	Topic     string
	Model     string
	Template  domain.Template
	// Hints are per-section queries already extracted from the model output;
	// when they cover every slot the query-batch provider call is skipped.
	Hints []postprocess.ImageHint
	// HasFeatured suppresses featured-image handling when the article
	// already carries one.
	HasFeatured bool
}

// Place runs the chosen strategy and persists the updated body. A failed
// single fetch or sideload is logged and skipped; only a persistence failure
// on the final content write is returned.
func (p *Placer) Place(ctx context.Context, req Request) error {
	placeholders := postprocess.CountPlaceholders(req.Body)

	var slots []slot
	body := req.Body
	if placeholders > 0 {
		slots = placeholderSlots(body, placeholders)
	} else {
		body, slots = segmentSlots(body, req.Template.ImageCount)
	}

	queries := p.resolveQueries(ctx, req, slots)

	if req.Template.ImageFeatured && !req.HasFeatured {
		p.placeFeatured(ctx, req, queries.Featured)
	}

	changed := false
	for i := range slots {
		var query string
		if i < len(queries.Segments) {
			query = strings.TrimSpace(queries.Segments[i])
		}

		markup := ""
		if query != "" {
			markup = p.fetchMarkup(ctx, req, query)
		}

		if placeholders > 0 {
			// Document order: replace the next remaining token, or drop it
			// when this slot produced nothing.
			next, ok := postprocess.ReplaceNextPlaceholder(body, markup)
			if !ok {
				break
			}
			body = next
			changed = true
		} else if markup != "" {
			body = spliceBeforeParagraph(body, slots[i].paragraph, markup)
			changed = true
		}
	}

	if !changed {
		return nil
	}
	if err := p.store.UpdateContent(ctx, req.ArticleID, body); err != nil {
		return fmt.Errorf("update content with images: %w", err)
	}
	return nil
}

type slot struct {
	window    string
	paragraph int
}

// placeholderSlots derives one context window per token, in document order.
func placeholderSlots(body string, count int) []slot {
	slots := make([]slot, 0, count)
	rest := body
	for i := 0; i < count; i++ {
		idx := strings.Index(rest, postprocess.ImagePlaceholder)
		if idx < 0 {
			break
		}
		rest = rest[idx+len(postprocess.ImagePlaceholder):]
		slots = append(slots, slot{window: window(rest)})
	}
	return slots
}

// segmentSlots chooses min(imageCount, paragraphCount) evenly spaced
// insertion points by integer interval. With 9 paragraphs and 3 images the
// chosen indices are 0, 3 and 6.
func segmentSlots(body string, imageCount int) (string, []slot) {
	paragraphs := splitParagraphs(body)
	if imageCount <= 0 || len(paragraphs) == 0 {
		return body, nil
	}
	count := imageCount
	if len(paragraphs) < count {
		count = len(paragraphs)
	}
	interval := len(paragraphs) / count

	slots := make([]slot, 0, count)
	for i := 0; i < count; i++ {
		idx := i * interval
		slots = append(slots, slot{
			window:    window(postprocess.PlainText(paragraphs[idx])),
			paragraph: idx,
		})
	}
	return body, slots
}

func window(text string) string {
	text = strings.Join(strings.Fields(postprocess.StripTags(text)), " ")
	if len(text) > contextWindow {
		text = text[:contextWindow]
	}
	return text
}

// splitParagraphs cuts the body into units, each keeping its closing </p>.
// Trailing non-paragraph markup attaches to the last unit.
func splitParagraphs(body string) []string {
	ends := paragraphEnd.FindAllStringIndex(body, -1)
	if len(ends) == 0 {
		return nil
	}
	var units []string
	start := 0
	for _, end := range ends {
		units = append(units, body[start:end[1]])
		start = end[1]
	}
	if rest := body[start:]; strings.TrimSpace(rest) != "" {
		units[len(units)-1] += rest
	}
	return units
}

func spliceBeforeParagraph(body string, index int, markup string) string {
	units := splitParagraphs(body)
	if index < 0 || index >= len(units) {
		return body + "\n" + markup
	}
	units[index] = markup + "\n" + units[index]
	return strings.Join(units, "")
}

type queryBatch struct {
	Featured string   `json:"featured"`
	Segments []string `json:"segments"`
}

// resolveQueries prefers hints the post-processor already extracted and falls
// back to one batched provider call; a failed or malformed batch degrades to
// topic-based queries rather than aborting placement.
func (p *Placer) resolveQueries(ctx context.Context, req Request, slots []slot) queryBatch {
	if len(req.Hints) >= len(slots) && len(slots) > 0 {
		batch := queryBatch{Featured: req.Topic}
		for i := range slots {
			batch.Segments = append(batch.Segments, req.Hints[i].Query)
		}
		return batch
	}

	windows := make([]string, 0, len(slots))
	for _, s := range slots {
		windows = append(windows, s.window)
	}

	fallback := queryBatch{Featured: req.Topic}
	for range slots {
		fallback.Segments = append(fallback.Segments, req.Topic)
	}

	if p.provider == nil || len(slots) == 0 {
		return fallback
	}

	system, user := prompt.BuildImageQueryPrompt(req.Topic, windows)
	raw, err := p.provider.GenerateContent(ctx, system, user, req.Model)
	if err != nil {
		p.log(ctx, req.ArticleID, domain.SeverityWarning, fmt.Sprintf("Image query generation failed: %v", err))
		return fallback
	}

	var batch queryBatch
	if err := json.Unmarshal([]byte(strings.TrimSpace(postprocess.StripFences(raw))), &batch); err != nil {
		p.log(ctx, req.ArticleID, domain.SeverityWarning, fmt.Sprintf("Image query response was not valid JSON: %v", err))
		return fallback
	}
	if batch.Featured == "" {
		batch.Featured = req.Topic
	}
	return batch
}

func (p *Placer) placeFeatured(ctx context.Context, req Request, query string) {
	img, ok := p.fetchOne(ctx, req.ArticleID, query)
	if !ok {
		return
	}
	desc := img.AltText
	if req.Template.ImageAttributed {
		desc = attribution(img, p.searcher.Name())
	}
	assetID, err := p.sideloader.SideloadImage(ctx, img.URL, req.ArticleID, desc)
	if err != nil {
		p.log(ctx, req.ArticleID, domain.SeverityWarning, fmt.Sprintf("Featured image sideload failed: %v", err))
		return
	}
	if err := p.store.SetFeaturedImage(ctx, req.ArticleID, assetID); err != nil {
		p.log(ctx, req.ArticleID, domain.SeverityWarning, fmt.Sprintf("Setting featured image failed: %v", err))
		return
	}
	p.log(ctx, req.ArticleID, domain.SeveritySuccess, "Featured image set from query: "+query)
}

// fetchMarkup fetches one image for the query and returns figure markup, or
// empty when the slot should be skipped.
func (p *Placer) fetchMarkup(ctx context.Context, req Request, query string) string {
	img, ok := p.fetchOne(ctx, req.ArticleID, query)
	if !ok {
		return ""
	}

	assetID, err := p.sideloader.SideloadImage(ctx, img.URL, req.ArticleID, img.AltText)
	if err != nil {
		p.log(ctx, req.ArticleID, domain.SeverityWarning, fmt.Sprintf("Image sideload failed for %q: %v", query, err))
		return ""
	}

	caption := ""
	if req.Template.ImageAttributed {
		caption = attribution(img, p.searcher.Name())
	}
	return figureMarkup(p.sideloader.AssetURL(assetID), img.AltText, caption)
}

// fetchOne searches with an oversized batch whenever the ledger has history,
// filters out recently used URLs, and marks the winner used immediately,
// before the sideload, to narrow the repeat window.
func (p *Placer) fetchOne(ctx context.Context, articleID, query string) (domain.ImageResult, bool) {
	fetch := 1
	if p.ledger.Len() > 0 {
		fetch = oversizedCount(1)
	}

	results, err := p.searcher.SearchImages(ctx, query, fetch)
	if err != nil {
		p.log(ctx, articleID, domain.SeverityWarning, fmt.Sprintf("Image search failed for %q: %v", query, err))
		return domain.ImageResult{}, false
	}
	if len(results) == 0 {
		p.log(ctx, articleID, domain.SeverityWarning, "Image search returned no results for: "+query)
		return domain.ImageResult{}, false
	}

	filtered := make([]domain.ImageResult, 0, len(results))
	for _, r := range results {
		if !p.ledger.Contains(r.URL) {
			filtered = append(filtered, r)
		}
	}
	// Everything recently used: a shuffled repeat beats an empty slot.
	if len(filtered) == 0 {
		filtered = results
		p.shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})
	}

	img := filtered[0]
	p.ledger.Mark(ctx, img.URL)
	return img, true
}

func oversizedCount(needed int) int {
	if n := needed * oversizeFactor; n > oversizeFloor {
		return n
	}
	return oversizeFloor
}

func attribution(img domain.ImageResult, provider string) string {
	name := strings.TrimSpace(img.Photographer)
	if name == "" {
		name = "Unknown"
	}
	providerName := provider
	if providerName != "" {
		providerName = strings.ToUpper(providerName[:1]) + providerName[1:]
	}
	if img.PhotographerURL != "" {
		return fmt.Sprintf(`Photo by <a href="%s" target="_blank" rel="nofollow">%s</a> on %s`,
			html.EscapeString(img.PhotographerURL), html.EscapeString(name), providerName)
	}
	return fmt.Sprintf("Photo by %s on %s", name, providerName)
}

func figureMarkup(src, alt, caption string) string {
	var b strings.Builder
	b.WriteString(`<figure class="generated-image">`)
	fmt.Fprintf(&b, `<img src="%s" alt="%s"/>`, html.EscapeString(src), html.EscapeString(alt))
	if caption != "" {
		fmt.Fprintf(&b, "<figcaption>%s</figcaption>", caption)
	}
	b.WriteString("</figure>")
	return b.String()
}

func (p *Placer) log(ctx context.Context, articleID string, severity domain.Severity, message string) {
	if p.logger != nil {
		switch severity {
		case domain.SeverityWarning, domain.SeverityError:
			p.logger.Warn(message, "article_id", articleID)
		default:
			p.logger.Info(message, "article_id", articleID)
		}
	}
	if p.store != nil {
		_ = p.store.AppendArticleLog(ctx, articleID, domain.LogEntry{
			Time:     time.Now().UTC(),
			Message:  message,
			Severity: severity,
		})
	}
}
