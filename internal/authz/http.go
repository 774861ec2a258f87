// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package authz

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/sentrahq/sentra/internal/platform/middleware"
	requestutil "github.com/sentrahq/sentra/internal/platform/request"
	"github.com/sentrahq/sentra/internal/platform/respond"
	"github.com/sentrahq/sentra/internal/platform/validate"
)

// Handler implements the HTTP layer for privilege introspection.
type Handler struct {
	provider *Provider
}

// NewHandler constructs a new authz [Handler].
func NewHandler(provider *Provider) *Handler {
	return &Handler{provider: provider}
}

// Routes returns a [chi.Router] configured with the authz domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.myPrivileges)
	router.With(middleware.RequirePrivilege(handler.provider, PrivManageRoles)).
		Post("/resolve", handler.resolvePrivileges)

	return router
}

/*
GET /api/v1/privileges/me.

Description: Returns the effective privilege set of the authenticated user,
expanded through the active role hierarchy.

Response:
  - 200: privilegesResponse: Sorted effective privileges
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) myPrivileges(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, privilegesResponse{
		Roles:      claims.Roles,
		Privileges: sortedSet(handler.provider.Resolve(claims.Roles)),
	})
}

// resolveRequest defines the expected JSON payload for ad-hoc resolution.
type resolveRequest struct {
	Roles []string `json:"roles"`
}

// privilegesResponse is the introspection payload.
type privilegesResponse struct {
	Roles      []string `json:"roles"`
	Privileges []string `json:"privileges"`
}

/*
POST /api/v1/privileges/resolve.

Description: Expands an arbitrary role set into its effective privileges.
Intended for administrative tooling; unknown role names are ignored.

Request:
  - body: resolveRequest

Response:
  - 200: privilegesResponse: Sorted effective privileges
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Missing the manage_roles privilege
*/
func (handler *Handler) resolvePrivileges(writer http.ResponseWriter, request *http.Request) {
	var input resolveRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Custom("roles", len(input.Roles) == 0, "At least one role is required")
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, privilegesResponse{
		Roles:      input.Roles,
		Privileges: sortedSet(handler.provider.Resolve(input.Roles)),
	})
}

// sortedSet flattens a privilege set into a deterministic slice for responses.
func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for privilege := range set {
		out = append(out, privilege)
	}
	sort.Strings(out)
	return out
}
