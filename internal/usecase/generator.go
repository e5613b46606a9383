package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"autoblogger/internal/domain"
	"autoblogger/internal/images"
	"autoblogger/internal/ports"
	"autoblogger/internal/postprocess"
	"autoblogger/internal/prompt"
)

// Meta field keys the pipeline writes through the article store.
const (
	MetaDescriptionKey = "meta_description"
	MetaKeywordKey     = "keyword"
	MetaSchemaKey      = "schema_json"
)

const siteTagSeedLimit = 200

// ErrTemplateNotFound is returned when a generation request references a
// template id the store does not know.
var ErrTemplateNotFound = errors.New("template not found")

// GeneratorDeps wires all driven adapters into the generation pipeline.
type GeneratorDeps struct {
	Templates  ports.TemplateStore
	Providers  ports.ProviderResolver
	Searchers  ports.SearcherResolver
	Articles   ports.ArticleStore
	Sideloader ports.ImageSideloader
	Ledger     *images.Ledger
	Logger     *slog.Logger
	// SystemAuthorID is used when a request carries no author, e.g. runs
	// started by the scheduler.
	SystemAuthorID string
}

// Generator sequences prompt building, the provider call, post-processing,
// persistence and image placement into one unit of work, usable both
// interactively and from the scheduler.
type Generator struct {
	templates      ports.TemplateStore
	providers      ports.ProviderResolver
	searchers      ports.SearcherResolver
	articles       ports.ArticleStore
	sideloader     ports.ImageSideloader
	ledger         *images.Ledger
	logger         *slog.Logger
	systemAuthorID string
	now            func() time.Time
}

// NewGenerator constructs the orchestration component.
func NewGenerator(deps GeneratorDeps) *Generator {
	return &Generator{
		templates:      deps.Templates,
		providers:      deps.Providers,
		searchers:      deps.Searchers,
		articles:       deps.Articles,
		sideloader:     deps.Sideloader,
		ledger:         deps.Ledger,
		logger:         deps.Logger,
		systemAuthorID: deps.SystemAuthorID,
		now:            time.Now,
	}
}

// GenerateRequest identifies one article to produce.
type GenerateRequest struct {
	Topic      string
	TemplateID string
	Provider   string
	Model      string
	// AuthorID is empty for scheduled runs; the system identity applies.
	AuthorID string
}

// Generate runs the full pipeline and returns the created article id. Body
// generation and persistence failures abort the run; image and schema
// failures are logged against the article and tolerated.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	tpl, err := g.templates.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		return "", fmt.Errorf("resolve template %s: %w", req.TemplateID, err)
	}
	tpl = tpl.WithDefaults()

	provider, err := g.providers.ResolveProvider(req.Provider)
	if err != nil {
		return "", fmt.Errorf("resolve provider: %w", err)
	}

	// Tag seeding is an optimization; a store failure just means no seeds.
	siteTags, err := g.articles.SiteTags(ctx, siteTagSeedLimit)
	if err != nil {
		g.logger.Warn("loading site tags failed", "error", err)
		siteTags = nil
	}

	systemPrompt := prompt.BuildSystemPrompt(tpl, prompt.Options{SiteTags: siteTags})
	userPrompt := prompt.BuildUserPrompt(req.Topic)

	raw, err := provider.GenerateContent(ctx, systemPrompt, userPrompt, req.Model)
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", provider.Name(), err)
	}

	now := g.now()
	res := postprocess.Process(raw, req.Topic, tpl, now)

	slug := domain.Slugify(res.Title)
	if slug == "" {
		slug = domain.Slugify(req.Topic)
	}

	author := req.AuthorID
	if author == "" {
		author = g.systemAuthorID
	}

	articleID, err := g.articles.CreateDraft(ctx, domain.Article{
		Title:     res.Title,
		Slug:      slug,
		Body:      res.Body,
		Keyword:   req.Topic,
		Status:    domain.ArticleDraft,
		AuthorID:  author,
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}

	if err := g.articles.SetMetaField(ctx, articleID, MetaDescriptionKey, res.MetaDescription); err != nil {
		return "", fmt.Errorf("set meta description: %w", err)
	}
	if err := g.articles.SetMetaField(ctx, articleID, MetaKeywordKey, req.Topic); err != nil {
		return "", fmt.Errorf("set keyword: %w", err)
	}
	if len(res.Tags) > 0 {
		if err := g.articles.SetTags(ctx, articleID, res.Tags); err != nil {
			return "", fmt.Errorf("set tags: %w", err)
		}
	}
	g.logArticle(ctx, articleID, domain.SeveritySuccess, "Draft created for topic: "+req.Topic)

	if tpl.WantsSchema() {
		g.generateSchema(ctx, articleID, provider, tpl, res, req.Model)
	}

	if tpl.WantsImages() {
		g.placeImages(ctx, articleID, provider, tpl, res, req)
	}

	return articleID, nil
}

// generateSchema asks the provider for a JSON-LD blob. Invalid output is
// logged and dropped; it never fails the generation.
func (g *Generator) generateSchema(ctx context.Context, articleID string, provider ports.ContentProvider, tpl domain.Template, res postprocess.Result, model string) {
	system, user := prompt.BuildSchemaPrompt(tpl.SchemaType, res.Title, res.Body)
	raw, err := provider.GenerateContent(ctx, system, user, model)
	if err != nil {
		g.logArticle(ctx, articleID, domain.SeverityWarning, fmt.Sprintf("Schema generation failed: %v", err))
		return
	}

	blob := strings.TrimSpace(postprocess.StripFences(raw))
	if !json.Valid([]byte(blob)) {
		g.logArticle(ctx, articleID, domain.SeverityWarning, "Schema generation returned invalid JSON; dropped")
		return
	}

	if err := g.articles.SetMetaField(ctx, articleID, MetaSchemaKey, blob); err != nil {
		g.logArticle(ctx, articleID, domain.SeverityWarning, fmt.Sprintf("Storing schema failed: %v", err))
		return
	}
	g.logArticle(ctx, articleID, domain.SeveritySuccess, "Schema markup stored: "+tpl.SchemaType)
}

// placeImages runs the placement strategist; an article with no images is a
// valid successful outcome, so failures stay in the log.
func (g *Generator) placeImages(ctx context.Context, articleID string, provider ports.ContentProvider, tpl domain.Template, res postprocess.Result, req GenerateRequest) {
	searcher, err := g.searchers.ResolveSearcher(tpl.ImageProvider)
	if err != nil {
		g.logArticle(ctx, articleID, domain.SeverityWarning, fmt.Sprintf("Image provider unavailable: %v", err))
		return
	}

	placer := images.NewPlacer(provider, searcher, g.sideloader, g.articles, g.ledger, g.logger)
	err = placer.Place(ctx, images.Request{
		ArticleID: articleID,
		Body:      res.Body,
		Topic:     req.Topic,
		Model:     req.Model,
		Template:  tpl,
		Hints:     res.ImageHints,
	})
	if err != nil {
		g.logArticle(ctx, articleID, domain.SeverityWarning, fmt.Sprintf("Image placement failed: %v", err))
	}
}

func (g *Generator) logArticle(ctx context.Context, articleID string, severity domain.Severity, message string) {
	if err := g.articles.AppendArticleLog(ctx, articleID, domain.LogEntry{
		Time:     g.now().UTC(),
		Message:  message,
		Severity: severity,
	}); err != nil {
		g.logger.Warn("appending article log failed", "article_id", articleID, "error", err)
	}
}
