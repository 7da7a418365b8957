package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/stackcanvas/pkg/buildinfo"
	"github.com/matzehuels/stackcanvas/pkg/cache"
	"github.com/matzehuels/stackcanvas/pkg/editor"
	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/render"
	"github.com/matzehuels/stackcanvas/pkg/stack"
	"github.com/matzehuels/stackcanvas/pkg/store"
)

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// Config holds server dependencies. Store is required.
type Config struct {
	Store     store.Store
	Cache     cache.Cache
	Templates *stack.Registry
	Logger    *log.Logger

	// Gatherer serves /metrics. Nil omits the route.
	Gatherer prometheus.Gatherer

	// EditorOptions are applied to every session editor.
	EditorOptions []editor.Option
}

// Server hosts editor sessions.
type Server struct {
	store     store.Store
	renderer  *render.Renderer
	templates *stack.Registry
	logger    *log.Logger
	gatherer  prometheus.Gatherer
	editorOps []editor.Option
	validate  *validator.Validate

	mu       sync.Mutex
	sessions map[string]*session
}

// session is one open document.
type session struct {
	doc    stack.Document
	editor *editor.Editor
}

// New creates a server from cfg.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "server needs a store")
	}
	if cfg.Templates == nil {
		cfg.Templates = stack.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	ops := append([]editor.Option{
		editor.WithTemplates(cfg.Templates),
		editor.WithLogger(cfg.Logger),
	}, cfg.EditorOptions...)

	return &Server{
		store:     cfg.Store,
		renderer:  render.NewRenderer(cfg.Cache),
		templates: cfg.Templates,
		logger:    cfg.Logger,
		gatherer:  cfg.Gatherer,
		editorOps: ops,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sessions:  make(map[string]*session),
	}, nil
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", s.listTemplates)
		r.Route("/stacks", func(r chi.Router) {
			r.Get("/", s.listStacks)
			r.Post("/", s.createStack)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getStack)
				r.Put("/", s.saveStack)
				r.Delete("/", s.deleteStack)
				r.Post("/components", s.addComponent)
				r.Post("/containers", s.addContainer)
				r.Get("/containers/{cid}", s.getContainer)
				r.Put("/containers/{cid}/resources", s.setResources)
				r.Put("/containers/{cid}/page", s.setPage)
				r.Delete("/nodes/{nid}", s.deleteNode)
				r.Post("/connections", s.connect)
				r.Post("/events", s.dispatch)
				r.Post("/undo", s.undo)
				r.Post("/redo", s.redo)
				r.Get("/render.svg", s.renderSVG)
				r.Get("/export/{format}", s.export)
			})
		})
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// =============================================================================
// Sessions
// =============================================================================

// open returns the session for id, loading it from the store on first use.
func (s *Server) open(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.New(errs.ErrCodeSessionNotFound, "stack %q not found", id)
		}
		return nil, err
	}
	return s.startLocked(doc)
}

func (s *Server) startLocked(doc stack.Document) (*session, error) {
	ed, err := editor.New(doc.State, s.editorOps...)
	if err != nil {
		return nil, err
	}
	sess := &session{doc: doc, editor: ed}
	s.sessions[doc.ID] = sess
	s.logger.Debug("session opened", "id", doc.ID)
	return sess, nil
}

func (s *Server) close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.editor.Flush()
		delete(s.sessions, id)
	}
}

// save persists the session's current state.
func (s *Server) save(ctx context.Context, sess *session) (stack.Document, error) {
	sess.editor.Flush()

	s.mu.Lock()
	doc := sess.doc
	s.mu.Unlock()

	doc.State = sess.editor.State()
	if err := s.store.Put(ctx, doc); err != nil {
		return stack.Document{}, err
	}
	saved, err := s.store.Get(ctx, doc.ID)
	if err != nil {
		return stack.Document{}, err
	}

	s.mu.Lock()
	sess.doc = saved
	s.mu.Unlock()
	sess.editor.MarkSaved()
	return saved, nil
}
