// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

package accounts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	requestutil "github.com/sentrahq/sentra/internal/platform/request"
	"github.com/sentrahq/sentra/internal/platform/respond"
	"github.com/sentrahq/sentra/internal/platform/validate"
	"github.com/sentrahq/sentra/pkg/pagination"
	"github.com/sentrahq/sentra/pkg/query"
)

// Handler implements the HTTP layer for account lifecycle management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new accounts [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the unauthenticated account endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Enrollment
	router.Post("/register", handler.register)
	router.Post("/verify", handler.verify)
	router.Post("/verify/resend", handler.resendVerification)

	// Sessions
	router.Post("/login", handler.login)

	// Password recovery
	router.Post("/password-reset/request", handler.requestPasswordReset)
	router.Post("/password-reset/confirm", handler.confirmPasswordReset)

	return router
}

// MeRoutes returns a [chi.Router] with the authenticated self-service endpoints.
func (handler *Handler) MeRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.getMe)

	return router
}

// AdminRoutes returns a [chi.Router] with the administrative endpoints.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listAccounts)
	router.Get("/{id}", handler.getAccount)
	router.Post("/{id}/lock", handler.lockAccount)
	router.Post("/{id}/unlock", handler.unlockAccount)
	router.Post("/{id}/disable", handler.disableAccount)
	router.Post("/{id}/login-outcome", handler.recordLoginOutcome)

	return router
}

// # Enrollment Endpoints

// registerRequest defines the expected JSON payload for registration.
type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

/*
POST /api/v1/auth/register.

Description: Enrolls a new account in the pending state and issues a
verification token.

Request:
  - body: registerRequest

Response:
  - 201: Account: Created entity (no secrets)
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email).
		Required("display_name", input.DisplayName).MaxLen("display_name", input.DisplayName, 50).
		MinLen("password", input.Password, 8).MaxLen("password", input.Password, 128)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.Register(request.Context(), RegisterInput{
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Password:    []byte(input.Password),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

// tokenRequest defines a JSON payload carrying a single token value.
type tokenRequest struct {
	Token string `json:"token"`
}

/*
POST /api/v1/auth/verify.

Description: Consumes a verification token and enables the account.

Request:
  - body: tokenRequest

Response:
  - 200: Account: The now-enabled account
  - 400: PurposeMismatch: Token belongs to another workflow
  - 404: TokenNotFound: Unknown token value
  - 409: TokenAlreadyUsed/Conflict: Token spent or account already verified
  - 410: TokenExpired: Token lifetime has passed
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input tokenRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("token", input.Token)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.VerifyAccount(request.Context(), input.Token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// emailRequest defines a JSON payload carrying a single email address.
type emailRequest struct {
	Email string `json:"email"`
}

/*
POST /api/v1/auth/verify/resend.

Description: Issues a fresh verification token for a pending account. Always
responds 204 so the endpoint cannot be used to probe for registered emails.

Request:
  - body: emailRequest

Response:
  - 204: No Content: Accepted
  - 400: ErrInvalidJSON/Validation: Invalid input data
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.ResendVerification(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Session Endpoints

// loginRequest defines the expected JSON payload for authentication.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
POST /api/v1/auth/login.

Description: Validates credentials and issues a signed access token. Account
state gates run before the password comparison.

Request:
  - body: loginRequest

Response:
  - 200: AuthSession: Access token and account
  - 401: ErrUnauthorized: Unknown email or wrong password
  - 403: AccountDisabled/AccountPending: State refuses authentication
  - 423: AccountLocked: Too many failures
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Required("password", input.Password)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.accountService.Authenticate(request.Context(), AuthenticateInput{
		Email:    input.Email,
		Password: []byte(input.Password),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// # Password Recovery Endpoints

/*
POST /api/v1/auth/password-reset/request.

Description: Issues a reset token for the account behind the email. Always
responds 204; unknown emails are indistinguishable from known ones.

Request:
  - body: emailRequest

Response:
  - 204: No Content: Accepted
  - 400: ErrInvalidJSON/Validation: Invalid input data
*/
func (handler *Handler) requestPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", input.Email).Email("email", input.Email)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// confirmResetRequest defines the expected JSON payload for completing a reset.
type confirmResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

/*
POST /api/v1/auth/password-reset/confirm.

Description: Redeems a reset token and replaces the account's password. A
successful reset clears the failure counter and lifts a failure lock.

Request:
  - body: confirmResetRequest

Response:
  - 204: No Content: Password replaced
  - 400: PurposeMismatch/Validation: Invalid input or wrong token workflow
  - 403: AccountDisabled: Administrative shutdown blocks the reset
  - 404: TokenNotFound: Unknown token value
  - 409: TokenAlreadyUsed: Token spent
  - 410: TokenExpired: Token lifetime has passed
*/
func (handler *Handler) confirmPasswordReset(writer http.ResponseWriter, request *http.Request) {
	var input confirmResetRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("token", input.Token).
		MinLen("new_password", input.NewPassword, 8).MaxLen("new_password", input.NewPassword, 128)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.accountService.ConsumePasswordReset(request.Context(), input.Token, []byte(input.NewPassword))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Self-Service Endpoints

/*
GET /api/v1/accounts/me.

Description: Returns the authenticated account.

Response:
  - 200: Account: Hydrated entity
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetAccount(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// # Administrative Endpoints

/*
GET /api/v1/admin/accounts.

Description: Lists accounts newest first. Supports free-text search over
email and display name plus a comma-separated status filter.

Request:
  - q: string (optional search term)
  - status: string (optional, e.g. "locked,disabled")
  - page, limit: int (standard pagination)

Response:
  - 200: []Account with pagination metadata
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Missing the manage_users privilege
*/
func (handler *Handler) listAccounts(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
	}
	for _, raw := range query.StringSlice(request.URL.Query().Get("status")) {
		filter.Statuses = append(filter.Statuses, Status(raw))
	}

	accounts, total, err := handler.accountService.ListAccounts(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, accounts, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/admin/accounts/{id}.

Description: Retrieves any account by ID.

Request:
  - id: string (Account UUID)

Response:
  - 200: Account: Hydrated entity
  - 404: AccountNotFound: No such account
*/
func (handler *Handler) getAccount(writer http.ResponseWriter, request *http.Request) {
	account, err := handler.accountService.GetAccount(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
POST /api/v1/admin/accounts/{id}/lock.

Description: Places an enabled account under an administrative lock.

Response:
  - 204: No Content: Account locked
  - 404: AccountNotFound: No such account
  - 409: ErrConflict: Account is not enabled
*/
func (handler *Handler) lockAccount(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Lock(request.Context(), chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/admin/accounts/{id}/unlock.

Description: Returns a locked account to enabled with a clean failure
counter.

Response:
  - 204: No Content: Account unlocked
  - 404: AccountNotFound: No such account
  - 409: ErrConflict: Account is not locked
*/
func (handler *Handler) unlockAccount(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Unlock(request.Context(), chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/admin/accounts/{id}/disable.

Description: Shuts the account down administratively.

Response:
  - 204: No Content: Account disabled
  - 404: AccountNotFound: No such account
*/
func (handler *Handler) disableAccount(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Disable(request.Context(), chi.URLParam(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// loginOutcomeRequest defines the expected JSON payload for reporting an
// externally verified authentication outcome.
type loginOutcomeRequest struct {
	Success bool `json:"success"`
}

// loginOutcomeResponse reports the lockout effect of the recorded outcome.
type loginOutcomeResponse struct {
	Locked bool `json:"locked"`
}

/*
POST /api/v1/admin/accounts/{id}/login-outcome.

Description: Records an authentication outcome observed outside the login
endpoint, such as a passkey assertion verified at the edge. Failures count
toward the lockout threshold.

Request:
  - id: string (Account UUID)
  - body: loginOutcomeRequest

Response:
  - 200: loginOutcomeResponse: Whether this outcome locked the account
  - 404: AccountNotFound: No such account
*/
func (handler *Handler) recordLoginOutcome(writer http.ResponseWriter, request *http.Request) {
	var input loginOutcomeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	locked, err := handler.accountService.RecordLoginOutcome(request.Context(), chi.URLParam(request, "id"), input.Success)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginOutcomeResponse{Locked: locked})
}
