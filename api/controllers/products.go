package controllers

import (
	"net/http"

	"github.com/Ayuoyi/AsiliConnect/api/middleware"
	"github.com/Ayuoyi/AsiliConnect/api/responses"
	"github.com/Ayuoyi/AsiliConnect/api/validators"
	"github.com/Ayuoyi/AsiliConnect/internal/products"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

type productPublishRequest struct {
	Name     string `json:"name" validate:"required"`
	Farmer   string `json:"farmer"`
	Location string `json:"location"`
	Price    string `json:"price"`
	Unit     string `json:"unit"`
	Image    string `json:"image"`
}

// ProductsList returns the session's published catalog.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		responses.WriteSuccess(w, svc.List(r.Context(), sessionID))
	}
}

// ProductsPublish creates a listing. Description generation is best
// effort; the publish succeeds without it.
func ProductsPublish(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productPublishRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		product, err := svc.Publish(r.Context(), sessionID, products.PublishInput{
			Name:     req.Name,
			Farmer:   req.Farmer,
			Location: req.Location,
			Price:    req.Price,
			Unit:     req.Unit,
			Image:    req.Image,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}
