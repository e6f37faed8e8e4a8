package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/leavehub/leavehub-backend-go/internal/domain/invitation"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	invHandlerTestSecret = "test-secret-key-for-jwt"
	invHandlerAccessExp  = "1h"
	invHandlerRefreshExp = "24h"
)

// stubInvitationService records calls and returns scripted results.
type stubInvitationService struct {
	createResp invitation.CreateResponse
	createErr  error
	createReq  invitation.CreateRequest

	detailResp invitation.DetailResponse
	detailErr  error
	lookupKey  string

	acceptResp  invitation.AcceptResponse
	acceptErr   error
	acceptToken string
	acceptUser  string
	acceptEmail string

	rejectErr error

	myResp []invitation.MyInvitationResponse
	myErr  error

	conflicts    []invitation.ConflictItem
	conflictsErr error
}

func (s *stubInvitationService) Create(ctx context.Context, req invitation.CreateRequest) (invitation.CreateResponse, error) {
	s.createReq = req
	return s.createResp, s.createErr
}

func (s *stubInvitationService) GetByToken(ctx context.Context, token string) (invitation.DetailResponse, error) {
	s.lookupKey = token
	return s.detailResp, s.detailErr
}

func (s *stubInvitationService) GetByCode(ctx context.Context, code string) (invitation.DetailResponse, error) {
	s.lookupKey = code
	return s.detailResp, s.detailErr
}

func (s *stubInvitationService) Accept(ctx context.Context, token, userID, userEmail string) (invitation.AcceptResponse, error) {
	s.acceptToken = token
	s.acceptUser = userID
	s.acceptEmail = userEmail
	return s.acceptResp, s.acceptErr
}

func (s *stubInvitationService) Reject(ctx context.Context, token, userEmail string) error {
	return s.rejectErr
}

func (s *stubInvitationService) ListMyInvitations(ctx context.Context, email string) ([]invitation.MyInvitationResponse, error) {
	return s.myResp, s.myErr
}

func (s *stubInvitationService) ListConflicts(ctx context.Context, email, organizationID string) ([]invitation.ConflictItem, error) {
	return s.conflicts, s.conflictsErr
}

func (s *stubInvitationService) ExpireDueInvitations(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *stubInvitationService) PurgeOldInvitations(ctx context.Context) (int64, error) {
	return 0, nil
}

func newInvitationTestRouter(stub *stubInvitationService) (*chi.Mux, jwt.Service) {
	jwtService := jwt.NewJWTService(invHandlerTestSecret, invHandlerAccessExp, invHandlerRefreshExp)
	authHandler := NewAuthHandler(jwtService, nil, nil, "http://localhost:3000")
	invitationHandler := NewInvitationHandler(stub)
	return NewRouter(jwtService, authHandler, invitationHandler), jwtService
}

func bearerToken(t *testing.T, jwtService jwt.Service, userID, email string) string {
	t.Helper()
	token, _, err := jwtService.GenerateAccessToken(userID, email)
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	errDetail, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error detail in body: %s", w.Body.String())
	msg, _ := errDetail["message"].(string)
	return msg
}

func TestInvitationHandler_GetByToken_Success(t *testing.T) {
	stub := &stubInvitationService{
		detailResp: invitation.DetailResponse{
			Email:            "alice@example.com",
			FullName:         "Alice Smith",
			Role:             "employee",
			OrganizationID:   "org-1",
			OrganizationName: "Acme Corp",
			InviterName:      "Grace Admin",
			Status:           "pending",
		},
	}
	router, _ := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invitations/some-opaque-token", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "some-opaque-token", stub.lookupKey)

	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", data["organization_name"])
	// The view never carries the credentials back out
	assert.NotContains(t, w.Body.String(), "some-opaque-token")
	assert.NotContains(t, data, "token")
	assert.NotContains(t, data, "code")
}

func TestInvitationHandler_GetByToken_MissingTokenParam(t *testing.T) {
	stub := &stubInvitationService{}
	handler := NewInvitationHandler(stub)

	// An empty URL parameter never reaches the service
	rctx := chi.NewRouteContext()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invitations/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	handler.GetInvitationByToken(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Token is required", errorMessage(t, w))
}

func TestInvitationHandler_GetByToken_NotFound(t *testing.T) {
	stub := &stubInvitationService{detailErr: invitation.ErrInvitationNotFound}
	router, _ := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invitations/unknown-token", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invitation not found or invalid", errorMessage(t, w))
	// The presented credential is never echoed
	assert.NotContains(t, w.Body.String(), "unknown-token")
}

func TestInvitationHandler_GetByToken_Expired(t *testing.T) {
	stub := &stubInvitationService{detailErr: invitation.ErrInvitationExpired}
	router, _ := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invitations/stale-token", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "Invitation has expired", errorMessage(t, w))
}

func TestInvitationHandler_Lookup_Success(t *testing.T) {
	stub := &stubInvitationService{
		detailResp: invitation.DetailResponse{
			Email:            "alice@example.com",
			OrganizationName: "Acme Corp",
			Status:           "pending",
		},
	}
	router, _ := newInvitationTestRouter(stub)

	payload := bytes.NewBufferString(`{"code":"Xk7mPq2w"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/lookup", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Xk7mPq2w", stub.lookupKey)
	assert.NotContains(t, w.Body.String(), "Xk7mPq2w")
}

func TestInvitationHandler_Lookup_MissingCode(t *testing.T) {
	stub := &stubInvitationService{}
	router, _ := newInvitationTestRouter(stub)

	payload := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/lookup", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invitation code is required", errorMessage(t, w))
}

func TestInvitationHandler_Lookup_MalformedBody(t *testing.T) {
	stub := &stubInvitationService{}
	router, _ := newInvitationTestRouter(stub)

	payload := bytes.NewBufferString(`{"code": `)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/lookup", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorMessage(t, w))
}

func TestInvitationHandler_Create_RequiresAuth(t *testing.T) {
	stub := &stubInvitationService{}
	router, _ := newInvitationTestRouter(stub)

	payload := bytes.NewBufferString(`{"email":"alice@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvitationHandler_Create_Success(t *testing.T) {
	stub := &stubInvitationService{
		createResp: invitation.CreateResponse{
			ID:     "inv-1",
			Email:  "alice@example.com",
			Token:  "fresh-token",
			Code:   "Xk7mPq2w",
			Status: "pending",
		},
	}
	router, jwtService := newInvitationTestRouter(stub)

	payload := bytes.NewBufferString(`{
		"email": "alice@example.com",
		"full_name": "Alice Smith",
		"role": "employee",
		"organization_id": "org-1",
		"on_conflict": "keep_latest"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/", payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-admin", "grace@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	// The inviter comes from the JWT, never from the body
	assert.Equal(t, "user-admin", stub.createReq.InvitedByUserID)
	assert.Equal(t, "keep_latest", stub.createReq.OnConflict)

	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	// CreateResponse is the one place the credentials travel: the inviter
	// needs them to deliver the invitation
	assert.Equal(t, "fresh-token", data["token"])
	assert.Equal(t, "Xk7mPq2w", data["code"])
}

func TestInvitationHandler_Create_ValidationErrorsPassThrough(t *testing.T) {
	stub := &stubInvitationService{createErr: invitation.ErrUnknownStrategy}
	router, jwtService := newInvitationTestRouter(stub)

	payload := bytes.NewBufferString(`{"email":"alice@example.com","on_conflict":"keep_newest"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/", payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-admin", "grace@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvitationHandler_Accept_Success(t *testing.T) {
	stub := &stubInvitationService{
		acceptResp: invitation.AcceptResponse{
			OrganizationID:   "org-1",
			OrganizationName: "Acme Corp",
			MembershipID:     "mem-1",
			Role:             "employee",
		},
	}
	router, jwtService := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/some-token/accept", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-alice", "alice@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "some-token", stub.acceptToken)
	assert.Equal(t, "user-alice", stub.acceptUser)
	assert.Equal(t, "alice@example.com", stub.acceptEmail)
}

func TestInvitationHandler_Accept_EmailMismatch(t *testing.T) {
	stub := &stubInvitationService{acceptErr: invitation.ErrEmailMismatch}
	router, jwtService := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/some-token/accept", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-bob", "bob@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInvitationHandler_Accept_AlreadyUsed(t *testing.T) {
	stub := &stubInvitationService{acceptErr: invitation.ErrInvitationAlreadyUsed}
	router, jwtService := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/some-token/accept", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-alice", "alice@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Invitation is no longer pending", errorMessage(t, w))
}

func TestInvitationHandler_Reject_Success(t *testing.T) {
	stub := &stubInvitationService{}
	router, jwtService := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invitations/some-token/reject", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-alice", "alice@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvitationHandler_ListMyInvitations(t *testing.T) {
	stub := &stubInvitationService{
		myResp: []invitation.MyInvitationResponse{
			{Token: "tok-1", OrganizationName: "Acme Corp", Role: "employee", InviterName: "Grace Admin"},
			{Token: "tok-2", OrganizationName: "Globex", Role: "manager", InviterName: "Hank Boss"},
		},
	}
	router, jwtService := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invitations/my", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-alice", "alice@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestInvitationHandler_ListConflicts(t *testing.T) {
	stub := &stubInvitationService{
		conflicts: []invitation.ConflictItem{
			{ID: "inv-1", Email: "alice@example.com", Role: "employee"},
			{ID: "inv-2", Email: "alice@example.com", Role: "manager"},
		},
	}
	router, jwtService := newInvitationTestRouter(stub)

	target := fmt.Sprintf("/api/v1/invitations/conflicts?email=%s&organization_id=%s", "alice@example.com", "org-1")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-admin", "grace@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestInvitationHandler_ListConflicts_MissingParams(t *testing.T) {
	stub := &stubInvitationService{}
	router, jwtService := newInvitationTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invitations/conflicts", nil)
	req.Header.Set("Authorization", bearerToken(t, jwtService, "user-admin", "grace@example.com"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
