// Package preview serves a generated collection over HTTP for local
// inspection: composited images, metadata documents, and the run manifest.
package preview

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"artforge/pkg/generate"
)

// Server exposes one build directory.
type Server struct {
	buildDir string
	logger   *log.Logger
}

// NewServer creates a preview server over buildDir.
func NewServer(buildDir string, logger *log.Logger) *Server {
	return &Server{buildDir: buildDir, logger: logger}
}

// Handler returns the HTTP routes of the preview server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Get("/", s.handleIndex)
	r.Get("/images/{file}", s.handleFile("images"))
	r.Get("/json/{file}", s.handleFile("json"))
	return r
}

// handleIndex reports the run manifest, so a browser hitting the root sees
// what the build directory contains.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	m, err := generate.ReadManifest(s.buildDir)
	if err != nil {
		http.Error(w, "no manifest found; run 'artforge generate' first", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"run_id":        m.RunID,
		"amount":        m.Amount,
		"start_edition": m.StartEdition,
		"created_at":    m.CreatedAt,
		"images":        "/images/{edition}.png",
		"json":          "/json/{edition}.json",
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Errorf("writing index response: %v", err)
	}
}

// handleFile serves one artifact from a build subdirectory. The URL
// parameter is reduced to its base name so traversal outside the build tree
// is impossible.
func (s *Server) handleFile(subdir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(chi.URLParam(r, "file"))
		http.ServeFile(w, r, filepath.Join(s.buildDir, subdir, name))
	}
}

// logRequests logs each request with its duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	})
}
