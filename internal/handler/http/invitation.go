package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/leavehub/leavehub-backend-go/internal/domain/invitation"
	"github.com/leavehub/leavehub-backend-go/internal/handler/http/response"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/validator"
)

type InvitationHandler interface {
	// Public endpoints - view invitation details by credential
	GetInvitationByToken(w http.ResponseWriter, r *http.Request)
	LookupInvitationByCode(w http.ResponseWriter, r *http.Request)
	// Authenticated endpoints
	CreateInvitation(w http.ResponseWriter, r *http.Request)
	ListMyInvitations(w http.ResponseWriter, r *http.Request)
	ListConflicts(w http.ResponseWriter, r *http.Request)
	AcceptInvitation(w http.ResponseWriter, r *http.Request)
	RejectInvitation(w http.ResponseWriter, r *http.Request)
}

type invitationHandlerImpl struct {
	invitationService invitation.InvitationService
}

func NewInvitationHandler(invitationService invitation.InvitationService) InvitationHandler {
	return &invitationHandlerImpl{
		invitationService: invitationService,
	}
}

// CreateInvitation implements InvitationHandler - issue a new invitation
func (h *invitationHandlerImpl) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	_, claims, _ := jwtauth.FromContext(r.Context())

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "User ID not found in token")
		return
	}

	var req invitation.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.InvitedByUserID = userID

	result, err := h.invitationService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Invitation created successfully", result)
}

// GetInvitationByToken implements InvitationHandler - public endpoint
func (h *invitationHandlerImpl) GetInvitationByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.BadRequest(w, "Token is required", nil)
		return
	}

	result, err := h.invitationService.GetByToken(r.Context(), token)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// LookupInvitationByCode implements InvitationHandler - public endpoint for
// manual code entry. Same outcome semantics as the token lookup.
func (h *invitationHandlerImpl) LookupInvitationByCode(w http.ResponseWriter, r *http.Request) {
	var req invitation.CodeLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.InternalServerError(w, "Internal server error")
		return
	}

	if validator.IsEmpty(req.Code) {
		response.BadRequest(w, "Invitation code is required", nil)
		return
	}

	result, err := h.invitationService.GetByCode(r.Context(), req.Code)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListMyInvitations implements InvitationHandler - lists pending invitations for authenticated user
func (h *invitationHandlerImpl) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	_, claims, _ := jwtauth.FromContext(r.Context())

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		response.Unauthorized(w, "Email not found in token")
		return
	}

	results, err := h.invitationService.ListMyInvitations(r.Context(), email)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// ListConflicts implements InvitationHandler - manual conflict review surface
func (h *invitationHandlerImpl) ListConflicts(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	organizationID := r.URL.Query().Get("organization_id")
	if email == "" || organizationID == "" {
		response.BadRequest(w, "email and organization_id are required", nil)
		return
	}

	results, err := h.invitationService.ListConflicts(r.Context(), email, organizationID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// AcceptInvitation implements InvitationHandler - accept an invitation
func (h *invitationHandlerImpl) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.BadRequest(w, "Token is required", nil)
		return
	}

	_, claims, _ := jwtauth.FromContext(r.Context())

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "User ID not found in token")
		return
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		response.Unauthorized(w, "Email not found in token")
		return
	}

	result, err := h.invitationService.Accept(r.Context(), token, userID, email)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invitation accepted successfully", result)
}

// RejectInvitation implements InvitationHandler - decline an invitation
func (h *invitationHandlerImpl) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.BadRequest(w, "Token is required", nil)
		return
	}

	_, claims, _ := jwtauth.FromContext(r.Context())

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		response.Unauthorized(w, "Email not found in token")
		return
	}

	if err := h.invitationService.Reject(r.Context(), token, email); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invitation rejected", nil)
}
