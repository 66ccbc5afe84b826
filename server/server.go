// Package server is the source API: a thin HTTP layer that turns a marker
// token into template source and writes edits back to disk. It is a
// development-only collaborator of the instrumentation engine — gate it
// behind config, never expose it in production.
package server

import (
	"log/slog"
	"net/http"

	"github.com/abiiranathan/rex"

	"github.com/thedevdojo/refine/finder"
	"github.com/thedevdojo/refine/marker"
)

// Server wires the marker codec and path resolver to file I/O.
type Server struct {
	finder *finder.Finder
	store  *Store
	logger *slog.Logger
}

// New creates a Server. A nil logger falls back to slog.Default().
func New(f *finder.Finder, store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{finder: f, store: store, logger: logger}
}

// Router returns the rex router serving the source API.
func (s *Server) Router() *rex.Router {
	r := rex.NewRouter()
	r.GET("/source", s.FetchSource)
	r.POST("/source", s.SaveSource)
	return r
}

// saveRequest is the POST /source payload.
type saveRequest struct {
	Ref     string `json:"ref"`
	Content string `json:"content"`
}

// FetchSource resolves the "ref" query parameter to a template file and
// returns its contents together with the decoded location.
//
// An undecodable token is an invalid reference (400); a token whose
// identifier resolves to no file under the configured roots is not found
// (404). The two are deliberately distinct so the client can tell a stale
// page from a deleted template.
func (s *Server) FetchSource(c *rex.Context) error {
	token := c.Query("ref")

	ref, ok := marker.Decode(token)
	if !ok {
		s.logger.Warn("invalid source reference", "ref", token)
		c.WriteHeader(http.StatusBadRequest)
		return c.JSON(rex.Map{"error": "invalid reference"})
	}

	path, ok := s.finder.Abs(ref.TemplateID)
	if !ok {
		s.logger.Warn("template not found", "templateId", ref.TemplateID)
		c.WriteHeader(http.StatusNotFound)
		return c.JSON(rex.Map{"error": "file not found"})
	}

	content, err := s.store.Read(path)
	if err != nil {
		s.logger.Error("read template", "path", path, "error", err)
		c.WriteHeader(http.StatusInternalServerError)
		return c.JSON(rex.Map{"error": "could not read template"})
	}

	return c.JSON(rex.Map{
		"templateId": ref.TemplateID,
		"line":       ref.Line,
		"path":       path,
		"content":    content,
	})
}

// SaveSource decodes the reference in the request body, backs up the target
// file and replaces its contents.
func (s *Server) SaveSource(c *rex.Context) error {
	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		c.WriteHeader(http.StatusBadRequest)
		return c.JSON(rex.Map{"error": "malformed request body"})
	}

	ref, ok := marker.Decode(req.Ref)
	if !ok {
		s.logger.Warn("invalid source reference on save", "ref", req.Ref)
		c.WriteHeader(http.StatusBadRequest)
		return c.JSON(rex.Map{"error": "invalid reference"})
	}

	path, ok := s.finder.Abs(ref.TemplateID)
	if !ok {
		s.logger.Warn("template not found on save", "templateId", ref.TemplateID)
		c.WriteHeader(http.StatusNotFound)
		return c.JSON(rex.Map{"error": "file not found"})
	}

	if err := s.store.Write(path, req.Content); err != nil {
		s.logger.Error("save template", "path", path, "error", err)
		c.WriteHeader(http.StatusInternalServerError)
		return c.JSON(rex.Map{"error": "could not save template"})
	}

	s.logger.Info("template saved", "templateId", ref.TemplateID, "path", path)
	return c.JSON(rex.Map{"saved": true, "templateId": ref.TemplateID})
}
