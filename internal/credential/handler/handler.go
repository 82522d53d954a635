package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vouch/internal/credential/models"
	credservice "vouch/internal/credential/service"
	"vouch/internal/platform/middleware"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
)

// Service defines the credential operations used by the handler.
type Service interface {
	Issue(ctx context.Context, doc models.Document) (*models.Record, error)
	Verify(ctx context.Context, id string) (*models.VerifyResult, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// Handler wires credential endpoints to the credential service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a credential handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterIssuer mounts the issuance endpoints.
func (h *Handler) RegisterIssuer(r chi.Router) {
	r.Post("/credentials", h.HandleIssue)
}

// RegisterVerifier mounts the verification endpoints.
func (h *Handler) RegisterVerifier(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
}

// RegisterDiagnostics mounts the operational inspection endpoints. Callers
// are expected to guard these behind the admin-token middleware.
func (h *Handler) RegisterDiagnostics(r chi.Router) {
	r.Get("/credentials", h.HandleList)
}

// IssueResponse is the response body for credential issuance. Field names
// follow the public wire contract.
type IssueResponse struct {
	CredentialID string    `json:"credentialId"`
	Worker       string    `json:"worker"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// VerifyResponse is the response body for credential verification.
type VerifyResponse struct {
	Status     string          `json:"status"`
	Worker     string          `json:"worker,omitempty"`
	IssuedAt   *time.Time      `json:"issuedAt,omitempty"`
	Credential models.Document `json:"credential,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// ListResponse is the response body for the diagnostic credential listing.
type ListResponse struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// HandleIssue handles POST /credentials. The request body is the credential
// document itself; everything in it is free-form except an optional id.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	doc, ok := httputil.DecodeAndValidate[models.Document](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Issue(ctx, *doc)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.ErrorContext(ctx, "failed to issue credential",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IssueResponse{
		CredentialID: record.ID,
		Worker:       record.Worker,
		IssuedAt:     record.IssuedAt.UTC(),
	})
}

// HandleVerify handles POST /verify. The request carries a structured
// document with at minimum an "id" field. An unknown ID yields a 200 with
// status "invalid"; it is a normal outcome, not an error.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	doc, ok := httputil.DecodeAndValidate[models.Document](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	id, present := doc.ID()
	if !present {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "id is required"))
		return
	}

	result, err := h.service.Verify(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to verify credential",
			"request_id", requestID,
			"credential_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	response := VerifyResponse{
		Status: result.Status,
		Reason: result.Reason,
	}
	if result.Record != nil {
		issuedAt := result.Record.IssuedAt.UTC()
		response.Worker = result.Record.Worker
		response.IssuedAt = &issuedAt
		response.Credential = result.Record.Credential
	}

	httputil.WriteJSON(w, http.StatusOK, response)
}

// HandleList handles GET /credentials: the full set of known IDs, no
// filtering, no pagination.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids, err := h.service.ListIDs(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list credentials",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{
		Count: len(ids),
		IDs:   ids,
	})
}

var _ Service = (*credservice.Service)(nil)
