package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Ayuoyi/AsiliConnect/api/validators"
	"github.com/Ayuoyi/AsiliConnect/pkg/ai"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

// The /api/ai endpoints keep the flat {ok, ...} contract of the proxy
// they replaced, outside the envelope the rest of the API uses.

type describeProxyRequest struct {
	Name     string `json:"name" validate:"required"`
	Farmer   string `json:"farmer"`
	Location string `json:"location"`
	Price    string `json:"price"`
	Unit     string `json:"unit"`
	Image    string `json:"image"`
}

type chatProxyRequest struct {
	Messages []ai.Message `json:"messages" validate:"required,min=1"`
}

type aiDescriber interface {
	Describe(ctx context.Context, req ai.DescribeRequest) (*ai.Description, error)
}

type aiChatter interface {
	Chat(ctx context.Context, messages []ai.Message) (string, error)
}

// AIDescribe generates listing copy for a product draft.
func AIDescribe(provider aiDescriber, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req describeProxyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeProxyError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := provider.Describe(r.Context(), ai.DescribeRequest{
			Name:     req.Name,
			Farmer:   req.Farmer,
			Location: req.Location,
			Price:    req.Price,
			Unit:     req.Unit,
			Image:    req.Image,
		})
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "ai.describe failed", err)
			}
			writeProxyError(w, proxyStatus(err), proxyMessage(err))
			return
		}
		writeProxyJSON(w, http.StatusOK, map[string]any{"ok": true, "result": result})
	}
}

// AIChat runs one stateless completion turn over the caller's full
// conversation. The reply is the completion message object.
func AIChat(provider aiChatter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatProxyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeProxyError(w, http.StatusBadRequest, "messages required")
			return
		}

		reply, err := provider.Chat(r.Context(), req.Messages)
		if err != nil {
			if logg != nil {
				logg.Error(r.Context(), "ai.chat failed", err)
			}
			writeProxyError(w, proxyStatus(err), proxyMessage(err))
			return
		}
		writeProxyJSON(w, http.StatusOK, map[string]any{
			"ok":    true,
			"reply": ai.Message{Role: ai.RoleAssistant, Content: reply},
		})
	}
}

func proxyStatus(err error) int {
	switch ai.KindOf(err) {
	case ai.KindAuth:
		return http.StatusUnauthorized
	case ai.KindQuota:
		return http.StatusTooManyRequests
	case ai.KindNetwork:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// proxyMessage maps a classified failure to its fixed public string. The
// upstream cause stays in the log only.
func proxyMessage(err error) string {
	switch ai.KindOf(err) {
	case ai.KindAuth:
		return "AI authentication failed"
	case ai.KindQuota:
		return "AI quota exceeded"
	case ai.KindNetwork:
		return "AI service unreachable"
	}
	return "AI error"
}

func writeProxyError(w http.ResponseWriter, status int, message string) {
	writeProxyJSON(w, status, map[string]any{"ok": false, "error": message})
}

func writeProxyJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
