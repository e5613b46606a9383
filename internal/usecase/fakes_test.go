package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"autoblogger/internal/domain"
	"autoblogger/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeScheduleStore struct {
	schedules   []domain.Schedule
	savedQueues map[string][][]string
	statuses    map[string]domain.ScheduleStatus
	nextRuns    map[string]time.Time
	logs        map[string][]domain.LogEntry
}

var _ ports.ScheduleStore = (*fakeScheduleStore)(nil)

func newFakeScheduleStore(schedules ...domain.Schedule) *fakeScheduleStore {
	return &fakeScheduleStore{
		schedules:   schedules,
		savedQueues: map[string][][]string{},
		statuses:    map[string]domain.ScheduleStatus{},
		nextRuns:    map[string]time.Time{},
		logs:        map[string][]domain.LogEntry{},
	}
}

func (f *fakeScheduleStore) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	return f.schedules, nil
}

func (f *fakeScheduleStore) SaveQueue(ctx context.Context, id string, queue []string) error {
	f.savedQueues[id] = append(f.savedQueues[id], append([]string(nil), queue...))
	return nil
}

func (f *fakeScheduleStore) SetScheduleStatus(ctx context.Context, id string, status domain.ScheduleStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeScheduleStore) SetNextRun(ctx context.Context, id string, at time.Time) error {
	f.nextRuns[id] = at
	return nil
}

func (f *fakeScheduleStore) AppendScheduleLog(ctx context.Context, id string, entry domain.LogEntry) error {
	f.logs[id] = append(f.logs[id], entry)
	return nil
}

type fakeArticleStore struct {
	nextID    int
	drafts    []domain.Article
	meta      map[string]map[string]string
	tags      map[string][]string
	published []string
	featured  map[string]string
	bodies    map[string]string
	logs      map[string][]domain.LogEntry
	titles    []string
	siteTags  []string
}

var _ ports.ArticleStore = (*fakeArticleStore)(nil)

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{
		meta:     map[string]map[string]string{},
		tags:     map[string][]string{},
		featured: map[string]string{},
		bodies:   map[string]string{},
		logs:     map[string][]domain.LogEntry{},
	}
}

func (f *fakeArticleStore) CreateDraft(ctx context.Context, article domain.Article) (string, error) {
	f.nextID++
	article.ID = fmt.Sprintf("article-%d", f.nextID)
	f.drafts = append(f.drafts, article)
	f.bodies[article.ID] = article.Body
	return article.ID, nil
}

func (f *fakeArticleStore) UpdateContent(ctx context.Context, id, body string) error {
	f.bodies[id] = body
	return nil
}

func (f *fakeArticleStore) SetMetaField(ctx context.Context, id, key, value string) error {
	if f.meta[id] == nil {
		f.meta[id] = map[string]string{}
	}
	f.meta[id][key] = value
	return nil
}

func (f *fakeArticleStore) SetTags(ctx context.Context, id string, tags []string) error {
	f.tags[id] = append([]string(nil), tags...)
	return nil
}

func (f *fakeArticleStore) SetFeaturedImage(ctx context.Context, id, assetID string) error {
	f.featured[id] = assetID
	return nil
}

func (f *fakeArticleStore) Publish(ctx context.Context, id string) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeArticleStore) GetContent(ctx context.Context, id string) (string, error) {
	return f.bodies[id], nil
}

func (f *fakeArticleStore) GetTitle(ctx context.Context, id string) (string, error) {
	for _, d := range f.drafts {
		if d.ID == id {
			return d.Title, nil
		}
	}
	return "", fmt.Errorf("article %q not found", id)
}

func (f *fakeArticleStore) GetMetaField(ctx context.Context, id, key string) (string, error) {
	return f.meta[id][key], nil
}

func (f *fakeArticleStore) AppendArticleLog(ctx context.Context, id string, entry domain.LogEntry) error {
	f.logs[id] = append(f.logs[id], entry)
	return nil
}

func (f *fakeArticleStore) RecentTitles(ctx context.Context, days, limit int) ([]string, error) {
	if limit > 0 && len(f.titles) > limit {
		return f.titles[:limit], nil
	}
	return f.titles, nil
}

func (f *fakeArticleStore) SiteTags(ctx context.Context, limit int) ([]string, error) {
	return f.siteTags, nil
}

type fakeProvider struct {
	name     string
	respond  func(systemPrompt, userPrompt string) (string, error)
	requests []string
}

var _ ports.ContentProvider = (*fakeProvider)(nil)

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) GenerateContent(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	f.requests = append(f.requests, userPrompt)
	return f.respond(systemPrompt, userPrompt)
}

func staticProvider(name, response string) *fakeProvider {
	return &fakeProvider{name: name, respond: func(_, _ string) (string, error) {
		return response, nil
	}}
}

type fakeProviderResolver struct {
	provider ports.ContentProvider
}

var _ ports.ProviderResolver = (*fakeProviderResolver)(nil)

func (f *fakeProviderResolver) ResolveProvider(name string) (ports.ContentProvider, error) {
	if f.provider == nil {
		return nil, fmt.Errorf("provider %s is not registered", name)
	}
	return f.provider, nil
}

type fakeTemplateStore struct {
	templates map[string]domain.Template
}

var _ ports.TemplateStore = (*fakeTemplateStore)(nil)

func (f *fakeTemplateStore) GetTemplate(ctx context.Context, id string) (domain.Template, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return domain.Template{}, fmt.Errorf("template %q not found", id)
	}
	return tpl, nil
}

type fakeNotifier struct {
	subjects []string
	bodies   []string
	err      error
}

var _ ports.Notifier = (*fakeNotifier)(nil)

func (f *fakeNotifier) Send(ctx context.Context, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return nil
}

// newTestGenerator wires a generator whose provider returns the given raw
// response for a template with images and schema disabled.
func newTestGenerator(store *fakeArticleStore, response string) *Generator {
	return NewGenerator(GeneratorDeps{
		Templates: &fakeTemplateStore{templates: map[string]domain.Template{
			"tpl": {ID: "tpl"},
		}},
		Providers:      &fakeProviderResolver{provider: staticProvider("openai", response)},
		Articles:       store,
		Logger:         discardLogger(),
		SystemAuthorID: "system",
	})
}
