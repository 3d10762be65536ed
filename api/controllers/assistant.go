package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ayuoyi/AsiliConnect/api/responses"
	"github.com/Ayuoyi/AsiliConnect/api/validators"
	"github.com/Ayuoyi/AsiliConnect/internal/assistant"
	pkgerrors "github.com/Ayuoyi/AsiliConnect/pkg/errors"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

type assistantMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// AssistantSessionCreate starts a session. The probe runs before the
// response, so the returned snapshot already settled to ready or error.
func AssistantSessionCreate(mgr *assistant.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mgr.Create(r.Context())
		responses.WriteSuccessStatus(w, http.StatusCreated, session.Snapshot())
	}
}

// AssistantSessionGet returns the session snapshot.
func AssistantSessionGet(mgr *assistant.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mgr.Get(chi.URLParam(r, "id"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "assistant session not found"))
			return
		}
		responses.WriteSuccess(w, session.Snapshot())
	}
}

// AssistantSessionRemove tears a session down; a fresh session is the only
// recovery path from a terminal error or an exhausted budget.
func AssistantSessionRemove(mgr *assistant.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !mgr.Remove(chi.URLParam(r, "id")) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "assistant session not found"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// AssistantSessionSubmit runs one user turn.
func AssistantSessionSubmit(mgr *assistant.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assistantMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, ok := mgr.Get(chi.URLParam(r, "id"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "assistant session not found"))
			return
		}

		if session.Snapshot().LimitReached {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBudgetExhausted, "session request budget exhausted"))
			return
		}

		responses.WriteSuccess(w, session.Submit(r.Context(), req.Text))
	}
}
