// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the interactive UI: a single-paper page that
// summarizes sections and answers a research question, and a literature
// review page for up to five papers. Pages are server-rendered; per-user
// state lives in a session.Store keyed by a cookie.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/review"
	"github.com/pdiddy/research-assistant/internal/sections"
	"github.com/pdiddy/research-assistant/internal/session"
	"github.com/pdiddy/research-assistant/internal/summarize"
	"github.com/pdiddy/research-assistant/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators a Server needs. All fields are required
// except Logger.
type Deps struct {
	Config     types.Config
	Store      session.Store
	Extractor  convert.Extractor
	Summarizer *summarize.Summarizer
	Reviewer   *review.Reviewer
	Logger     *zap.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg        types.Config
	mode       sections.Mode
	store      session.Store
	extractor  convert.Extractor
	summarizer *summarize.Summarizer
	reviewer   *review.Reviewer
	log        *zap.Logger
	router     *gin.Engine
}

// New builds the router and parses the page templates. It does not change
// the global gin mode; callers pick it before calling New.
func New(d Deps) (*Server, error) {
	if d.Store == nil || d.Extractor == nil || d.Summarizer == nil || d.Reviewer == nil {
		return nil, errors.New("web: missing dependency")
	}
	mode, err := sections.ParseMode(d.Config.Sections.Mode)
	if err != nil {
		return nil, err
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"capitalize": summarize.Capitalize,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		cfg:        d.Config,
		mode:       mode,
		store:      d.Store,
		extractor:  d.Extractor,
		summarizer: d.Summarizer,
		reviewer:   d.Reviewer,
		log:        log,
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors.New(corsConfig(d.Config.Server)))
	router.SetHTMLTemplate(tmpl)
	s.router = router
	s.routes()
	return s, nil
}

func corsConfig(cfg types.ServerConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.IsDev() {
		c.AllowOriginFunc = func(string) bool { return true }
		return c
	}
	// Outside development only listed origins are allowed; an empty list
	// denies every cross-origin request.
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	c.AllowOriginFunc = func(origin string) bool { return allowed[origin] }
	return c
}

func (s *Server) routes() {
	r := s.router
	r.GET("/healthz", s.healthz)

	pages := r.Group("/", s.withSession)
	pages.GET("/", s.paperPage)
	pages.POST("/paper", s.limitBody(1), s.uploadPaper)
	pages.POST("/analyze", s.analyze)
	pages.GET("/paper/report.pdf", s.paperPDF)
	pages.GET("/paper/report.txt", s.paperText)

	pages.GET("/review", s.reviewPage)
	pages.POST("/review", s.limitBody(review.MaxDocuments+1), s.runReview)
	pages.GET("/review/report.pdf", s.reviewPDF)
	pages.GET("/review/report.txt", s.reviewText)
	pages.GET("/review/references.bib", s.reviewBibTeX)
	pages.GET("/review/references.yaml", s.reviewCSL)

	pages.POST("/reset", s.reset)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Server.Addr until ctx is done, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
