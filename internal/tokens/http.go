// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package tokens

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sentrahq/sentra/internal/platform/respond"
)

// Handler implements the HTTP layer for token maintenance.
type Handler struct {
	sweeper *Sweeper
}

// NewHandler constructs a new tokens [Handler].
func NewHandler(sweeper *Sweeper) *Handler {
	return &Handler{sweeper: sweeper}
}

// Routes returns a [chi.Router] configured with the token maintenance endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/purge", handler.purgeExpired)

	return router
}

// purgeResponse reports the outcome of a manual sweep.
type purgeResponse struct {
	Removed int `json:"removed"`
}

/*
POST /api/v1/admin/tokens/purge.

Description: Triggers an immediate expired-token sweep outside the background
schedule. Safe to call repeatedly; a sweep with nothing to do removes zero.

Response:
  - 200: purgeResponse: Number of tokens removed
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Missing the manage_tokens privilege
*/
func (handler *Handler) purgeExpired(writer http.ResponseWriter, request *http.Request) {
	removed, err := handler.sweeper.PurgeExpired(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, purgeResponse{Removed: removed})
}
