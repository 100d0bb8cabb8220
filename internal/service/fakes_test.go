package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/logger"
	"ai-sitebuilder-be/internal/repository/memory"
	"ai-sitebuilder-be/pkg/embedding"
	"ai-sitebuilder-be/pkg/events"
	"ai-sitebuilder-be/pkg/lease"
	"ai-sitebuilder-be/pkg/llm"
	"ai-sitebuilder-be/pkg/preview"
	"ai-sitebuilder-be/pkg/publish"
	"ai-sitebuilder-be/pkg/storage"
)

const bakeryPage = `<!DOCTYPE html><html><head><title>Bakery</title><style>:root{--brand:#123456}</style></head>` +
	`<body><header id="header"><h1 id="header-text-1">Fresh bread</h1></header>` +
	`<section id="hero"><p id="hero-text-1">Baked daily</p><img id="hero-img-1" src="loaf.png"/></section>` +
	`<footer id="footer"><a id="footer-link-1" href="/contact">Contact</a></footer></body></html>`

var (
	bakeryScope     = entity.Scope{OwnerId: 42, ProjectId: "bakery"}
	errProviderDown = errors.New("provider down")
)

type keywordEmbedding struct {
	mu    sync.Mutex
	calls int
	fail  error
}

var embeddingAxes = []string{"header", "hero", "footer", ":root"}

func (k *keywordEmbedding) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.calls++
	if k.fail != nil {
		return nil, k.fail
	}
	v := make([]float32, len(embeddingAxes))
	for i, kw := range embeddingAxes {
		if strings.Contains(text, kw) {
			v[i] = 1
		}
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: v}}, nil
}

type scriptedLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	history []llm.Message
	options *llm.Options
}

func (s *scriptedLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.history = history
	s.options = llm.Apply(llm.Options{}, opts...)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

type recordingEvents struct {
	events []events.Event
	err    error
}

func (r *recordingEvents) Publish(_ context.Context, event events.Event) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

type sentMail struct {
	To, Project, URL string
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendSitePublished(toEmail, projectName, siteURL string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: toEmail, Project: projectName, URL: siteURL})
	return nil
}

type fakeTarget struct {
	target string
	sites  []publish.Site
	err    error
}

func (f *fakeTarget) Publish(_ context.Context, site publish.Site) (*publish.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sites = append(f.sites, site)
	return &publish.Result{Target: f.target, URL: "https://sites.example/" + site.Slug + "/", Revision: "abc123"}, nil
}

type fakeDomains struct {
	slug, domain string
}

func (f *fakeDomains) AttachDomain(_ context.Context, slug, domain string) error {
	f.slug, f.domain = slug, domain
	return nil
}

type fakeRenderer struct {
	mu    sync.Mutex
	paths []string
	err   error
	done  chan struct{}
}

func (f *fakeRenderer) Render(_ context.Context, htmlPath string) ([]preview.Shot, error) {
	f.mu.Lock()
	f.paths = append(f.paths, htmlPath)
	err := f.err
	f.mu.Unlock()
	defer func() { f.done <- struct{}{} }()
	if err != nil {
		return nil, err
	}
	return []preview.Shot{{Viewport: "desktop", Path: htmlPath + ".png"}}, nil
}

// siteHarness is an edit service over in-memory storage with scripted collaborators.
type siteHarness struct {
	factory   *memory.RepositoryFactory
	store     *storage.MemoryStore
	embedder  *keywordEmbedding
	llm       *scriptedLLM
	locker    *lease.LocalLocker
	assembled *recordingPublisher
	edit      ISiteEditService
	sessions  IProjectSessionService
}

func newSiteHarness(t *testing.T) *siteHarness {
	t.Helper()
	h := &siteHarness{
		factory:   memory.NewRepositoryFactory(),
		store:     storage.NewMemoryStore(),
		embedder:  &keywordEmbedding{},
		llm:       &scriptedLLM{},
		locker:    lease.NewLocalLocker(),
		assembled: &recordingPublisher{},
	}
	h.edit = NewSiteEditService(h.factory, h.store, "generated", h.embedder, h.llm, h.locker, h.assembled, nopLogger(), time.Second)
	h.sessions = NewProjectSessionService(h.factory, memory.NewSessionRepository())
	return h
}

// seed writes the bakery page for scope and ingests it.
func (h *siteHarness) seed(t *testing.T, scope entity.Scope) {
	t.Helper()
	ctx := context.Background()
	if err := h.store.Write(ctx, DocumentPath(scope), bakeryPage); err != nil {
		t.Fatal(err)
	}
	if _, err := h.edit.Ingest(ctx, scope); err != nil {
		t.Fatal(err)
	}
}

func (h *siteHarness) document(t *testing.T, scope entity.Scope) string {
	t.Helper()
	doc, err := h.store.Read(context.Background(), DocumentPath(scope))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func nopLogger() logger.ILogger {
	return logger.NewNopLogger()
}
