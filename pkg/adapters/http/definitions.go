package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/impulse/pkg/definition"
	"github.com/aretw0/impulse/pkg/domain"
)

func (s *Server) mountDefinitions(r chi.Router) {
	r.Route("/funnels", func(r chi.Router) {
		r.Get("/", s.ListFunnels)
		r.Post("/", s.SaveFunnel)
		r.Get("/{id}", s.GetFunnel)
		r.Delete("/{id}", s.DeleteFunnel)
	})
	r.Route("/personas", func(r chi.Router) {
		r.Get("/", s.ListPersonas)
		r.Post("/", s.SavePersona)
		r.Get("/{id}", s.GetPersona)
		r.Delete("/{id}", s.DeletePersona)
	})
}

// decodeDocument reads a loosely typed definition body of the given kind.
func decodeDocument(r *http.Request, kind definition.Kind) (definition.Document, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return definition.Document{}, &domain.ConfigError{Field: "body", Reason: err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if _, ok := raw["kind"]; !ok {
		raw["kind"] = string(kind)
	}
	doc, err := definition.Decode(raw)
	if err != nil {
		return definition.Document{}, err
	}
	if doc.Kind != kind {
		return definition.Document{}, &domain.ConfigError{Field: "kind", Reason: "expected " + string(kind) + ", got " + string(doc.Kind)}
	}
	return doc, nil
}

// ListFunnels handles GET /funnels.
func (s *Server) ListFunnels(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.ListFunnels(r.Context())
	if err != nil {
		s.writeError(w, "ListFunnels", err)
		return
	}
	writeJSON(w, http.StatusOK, list, s.logger)
}

// SaveFunnel handles POST /funnels.
func (s *Server) SaveFunnel(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r, definition.KindFunnel)
	if err != nil {
		s.writeError(w, "SaveFunnel", err)
		return
	}
	if err := s.Store.SaveFunnel(r.Context(), *doc.Funnel); err != nil {
		s.writeError(w, "SaveFunnel", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc.Funnel, s.logger)
}

// GetFunnel handles GET /funnels/{id}.
func (s *Server) GetFunnel(w http.ResponseWriter, r *http.Request) {
	f, err := s.Store.GetFunnel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetFunnel", err)
		return
	}
	writeJSON(w, http.StatusOK, f, s.logger)
}

// DeleteFunnel handles DELETE /funnels/{id}.
func (s *Server) DeleteFunnel(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteFunnel(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeleteFunnel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPersonas handles GET /personas.
func (s *Server) ListPersonas(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.ListPersonas(r.Context())
	if err != nil {
		s.writeError(w, "ListPersonas", err)
		return
	}
	writeJSON(w, http.StatusOK, list, s.logger)
}

// SavePersona handles POST /personas.
func (s *Server) SavePersona(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r, definition.KindPersona)
	if err != nil {
		s.writeError(w, "SavePersona", err)
		return
	}
	if err := s.Store.SavePersona(r.Context(), *doc.Persona); err != nil {
		s.writeError(w, "SavePersona", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc.Persona, s.logger)
}

// GetPersona handles GET /personas/{id}.
func (s *Server) GetPersona(w http.ResponseWriter, r *http.Request) {
	p, err := s.Store.GetPersona(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetPersona", err)
		return
	}
	writeJSON(w, http.StatusOK, p, s.logger)
}

// DeletePersona handles DELETE /personas/{id}.
func (s *Server) DeletePersona(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeletePersona(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeletePersona", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
