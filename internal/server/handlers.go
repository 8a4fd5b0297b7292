package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC(), Version: s.opts.Version})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	vm, err := s.site.Page(r.Context(), r.URL.Path, r.URL.Query())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	if tag := ETag(vm); tag != "" {
		w.Header().Set("ETag", tag)
		if match := r.Header.Get("If-None-Match"); match == tag || match == "*" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeJSON(w, http.StatusOK, NewPageResponse(vm))
}

func (s *Server) handleIndexNames(w http.ResponseWriter, r *http.Request) {
	e, err := s.site.Current(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e.IndexNames())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	e, err := s.site.Current(r.Context())
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	resp, err := NewIndexResponse(e, chi.URLParam(r, "name"))
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.History.Roots())
}
