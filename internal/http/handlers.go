package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"famledger/internal/core"
	"famledger/internal/log"
	"famledger/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	cats, err := s.catalog.ListCategories(r.Context(), kind)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) handleSubmitIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpSubmit, err)
		return
	}
	intent, err := req.toIntent()
	if err != nil {
		writeError(w, r, log.OpSubmit, err)
		return
	}

	recs, err := s.ledger.SubmitIntent(r.Context(), intent)
	if err != nil {
		writeError(w, r, log.OpSubmit, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"records": recs})
}

func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request) {
	view, err := parseViewState(r)
	if err != nil {
		writeError(w, r, log.OpView, err)
		return
	}
	mv, err := s.ledger.MonthView(r.Context(), view)
	if err != nil {
		writeError(w, r, log.OpView, err)
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

func (s *Server) handleEditRecord(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpEdit, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, log.OpEdit, err)
		return
	}

	rec, err := s.ledger.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, log.OpEdit, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.ledger.PlanDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// handleDeleteRecord deletes only with confirm=true. Without it the plan comes back
// with 409 and nothing is removed.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	confirmer := services.Confirmed
	if !confirmed {
		confirmer = services.ConfirmFunc(func(_ context.Context, _ services.DeletePlan) (bool, error) {
			return false, nil
		})
	}

	plan, err := s.ledger.Delete(r.Context(), chi.URLParam(r, "id"), confirmer)
	if errors.Is(err, core.ErrNotConfirmed) {
		writeNotConfirmed(w, plan)
		return
	}
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
