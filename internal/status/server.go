package status

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// PairCodeSource exposes the current pairing code, when one exists.
type PairCodeSource interface {
	PairCode() (string, bool)
}

// Server is the read-only HTTP status page: a human-readable landing page
// and a JSON pairing-code endpoint. It never mutates bot state.
type Server struct {
	host   string
	port   int
	src    PairCodeSource
	logger *slog.Logger
	tmpl   *htmltemplate.Template
	server *http.Server
}

type ServerConfig struct {
	Host   string
	Port   int
	Source PairCodeSource
	Logger *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 3000
	}

	tmpl := htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))

	return &Server{
		host:   cfg.Host,
		port:   cfg.Port,
		src:    cfg.Source,
		logger: cfg.Logger,
		tmpl:   tmpl,
	}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}

	s.logger.Info("status page started", "addr", "http://"+addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /pair-code", s.handlePairCode)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	code, ok := s.src.PairCode()
	data := struct {
		PairCode string
		HasCode  bool
	}{PairCode: code, HasCode: ok}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("status page render failed", "err", err)
	}
}

func (s *Server) handlePairCode(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		PairCode *string `json:"pairCode"`
		Status   string  `json:"status"`
	}
	if code, ok := s.src.PairCode(); ok {
		resp.PairCode = &code
		resp.Status = "active"
	} else {
		resp.Status = "generating"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("pair code response failed", "err", err)
	}
}
