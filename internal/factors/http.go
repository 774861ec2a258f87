// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package factors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/sentrahq/sentra/internal/platform/request"
	"github.com/sentrahq/sentra/internal/platform/respond"
)

// Handler implements the HTTP layer for credential inventory management.
type Handler struct {
	factorService *Service
}

// NewHandler constructs a new factors [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{factorService: service}
}

// Routes returns a [chi.Router] configured with the factor endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listFactors)
	router.Post("/", handler.addFactor)
	router.Patch("/{id}", handler.renameFactor)
	router.Delete("/{id}", handler.removeFactor)

	return router
}

/*
GET /api/v1/factors.

Description: Enumerates the authenticated account's credentials in
registration order. Secret material never appears in the payload.

Response:
  - 200: []Factor: Ordered inventory
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) listFactors(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	factors, err := handler.factorService.List(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, factors)
}

// addFactorRequest defines the expected JSON payload for passkey registration.
type addFactorRequest struct {
	CredentialID   string `json:"credential_id"`
	Label          string `json:"label"`
	PublicKey      string `json:"public_key"`
	SignCount      int64  `json:"sign_count"`
	BackupEligible *bool  `json:"backup_eligible"`
	BackupState    *bool  `json:"backup_state"`
}

/*
POST /api/v1/factors.

Description: Registers a verified passkey credential on the authenticated
account.

Request:
  - body: addFactorRequest

Response:
  - 201: Factor: The registered factor
  - 400: ErrInvalidJSON/InvalidLabel: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 409: DuplicateCredential: Credential ID already registered
*/
func (handler *Handler) addFactor(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addFactorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	factor, err := handler.factorService.AddPasskey(request.Context(), accountID, AddPasskeyInput{
		CredentialID:   input.CredentialID,
		Label:          input.Label,
		PublicKey:      input.PublicKey,
		SignCount:      input.SignCount,
		BackupEligible: input.BackupEligible,
		BackupState:    input.BackupState,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, factor)
}

// renameFactorRequest defines the expected JSON payload for relabeling.
type renameFactorRequest struct {
	Label string `json:"label"`
}

/*
PATCH /api/v1/factors/{id}.

Description: Renames a credential.

Request:
  - id: string (Factor UUID)
  - body: renameFactorRequest

Response:
  - 204: No Content: Label updated
  - 400: InvalidLabel: Label fails the format rules
  - 401: ErrUnauthorized: Authentication required
  - 404: FactorNotFound: No such factor on this account
*/
func (handler *Handler) renameFactor(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input renameFactorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	factorID := chi.URLParam(request, "id")
	if err := handler.factorService.Rename(request.Context(), accountID, factorID, input.Label); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/factors/{id}.

Description: Removes a credential. The last factor of an enabled account is
protected; disabling the account first lifts the protection.

Request:
  - id: string (Factor UUID)

Response:
  - 204: No Content: Factor removed
  - 401: ErrUnauthorized: Authentication required
  - 404: FactorNotFound: No such factor on this account
  - 409: LastFactorRemovalDenied: Would strand an enabled account
*/
func (handler *Handler) removeFactor(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	factorID := chi.URLParam(request, "id")
	if err := handler.factorService.Remove(request.Context(), accountID, factorID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
