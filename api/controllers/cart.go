package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Ayuoyi/AsiliConnect/api/middleware"
	"github.com/Ayuoyi/AsiliConnect/api/responses"
	"github.com/Ayuoyi/AsiliConnect/api/validators"
	"github.com/Ayuoyi/AsiliConnect/internal/cart"
	pkgerrors "github.com/Ayuoyi/AsiliConnect/pkg/errors"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

type cartAddRequest struct {
	ProductID   string `json:"productId" validate:"required"`
	ProductName string `json:"productName" validate:"required"`
	UnitPrice   string `json:"unitPrice"`
	Unit        string `json:"unit"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	SessionID string          `json:"sessionId"`
	Items     []cart.LineItem `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func newCartResponse(sessionID string, items []cart.LineItem) cartResponse {
	return cartResponse{
		SessionID: sessionID,
		Items:     items,
		Subtotal:  cart.Subtotal(items),
	}
}

// CartGet returns the session's cart.
func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		items := svc.Get(r.Context(), sessionID)
		responses.WriteSuccess(w, newCartResponse(sessionID, items))
	}
}

// CartAdd adds quantity for a product, accumulating onto an existing line.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartAddRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price := decimal.Zero
		if req.UnitPrice != "" {
			parsed, err := decimal.NewFromString(req.UnitPrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unitPrice must be a number"))
				return
			}
			price = parsed
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		items, err := svc.Add(r.Context(), sessionID, cart.AddInput{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			UnitPrice:   price,
			Unit:        req.Unit,
			Quantity:    req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(sessionID, items))
	}
}

// CartUpdate sets an absolute quantity; zero or below removes the line.
func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		items := svc.Update(r.Context(), sessionID, chi.URLParam(r, "productId"), req.Quantity)
		responses.WriteSuccess(w, newCartResponse(sessionID, items))
	}
}

// CartRemove drops a line; removing an absent product is a no-op.
func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		items := svc.Remove(r.Context(), sessionID, chi.URLParam(r, "productId"))
		responses.WriteSuccess(w, newCartResponse(sessionID, items))
	}
}

// CartClear empties the session's cart.
func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		svc.Clear(r.Context(), sessionID)
		responses.WriteSuccess(w, newCartResponse(sessionID, []cart.LineItem{}))
	}
}
