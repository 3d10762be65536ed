package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ayuoyi/AsiliConnect/api/middleware"
	"github.com/Ayuoyi/AsiliConnect/api/responses"
	"github.com/Ayuoyi/AsiliConnect/internal/notifications"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

type feedResponse struct {
	SessionID string                 `json:"sessionId"`
	Records   []notifications.Record `json:"records"`
	Unread    int                    `json:"unread"`
}

func newFeedResponse(sessionID string, records []notifications.Record) feedResponse {
	return feedResponse{
		SessionID: sessionID,
		Records:   records,
		Unread:    notifications.UnreadCount(records),
	}
}

// NotificationsList returns the session's feed, most recent first.
func NotificationsList(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		records := svc.List(r.Context(), sessionID)
		responses.WriteSuccess(w, newFeedResponse(sessionID, records))
	}
}

// NotificationMarkRead flags one record as read; unknown ids are a no-op.
func NotificationMarkRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		records := svc.MarkRead(r.Context(), sessionID, chi.URLParam(r, "id"))
		responses.WriteSuccess(w, newFeedResponse(sessionID, records))
	}
}

// NotificationsMarkAllRead flags every record as read.
func NotificationsMarkAllRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		records := svc.MarkAllRead(r.Context(), sessionID)
		responses.WriteSuccess(w, newFeedResponse(sessionID, records))
	}
}

// NotificationsClear empties the session's feed.
func NotificationsClear(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		svc.Clear(r.Context(), sessionID)
		responses.WriteSuccess(w, newFeedResponse(sessionID, []notifications.Record{}))
	}
}
