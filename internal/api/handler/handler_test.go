package handler_test

import (
	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/profile"
	"complaintdesk/backend/internal/remote"
	"complaintdesk/backend/internal/users"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	studentID = "11111111-1111-4111-8111-111111111111"
	adminID   = "33333333-3333-4333-8333-333333333333"

	complaintID = "55555555-5555-4555-8555-555555555555"
)

type testServer struct {
	router     *gin.Engine
	issuer     *auth.Issuer
	storage    *MockStorage
	complaints *MockCollection[models.Complaint]
	comments   *MockCollection[models.Comment]
	messages   *MockCollection[models.ChatMessage]
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		issuer:     auth.NewIssuer("test-secret", time.Hour),
		storage:    new(MockStorage),
		complaints: new(MockCollection[models.Complaint]),
		comments:   new(MockCollection[models.Comment]),
		messages:   new(MockCollection[models.ChatMessage]),
	}
	s.storage.On("RoleOf", mock.Anything, studentID).Return(models.RoleStudent, nil).Maybe()
	s.storage.On("RoleOf", mock.Anything, adminID).Return(models.RoleAdmin, nil).Maybe()

	l, err := localization.NewBundled()
	require.NoError(t, err)

	complaints := complaint.NewService(s.storage, s.complaints, s.comments, s.messages, profile.NewJoiner(s.storage))
	h := handler.NewHandler(chathub.NewManagerService(nil, complaints), complaints, users.NewService(s.storage), l)
	s.router = handler.NewRouter(h, s.issuer, s.storage, nil)
	return s
}

func (s *testServer) do(t *testing.T, method, path, userID, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := s.issuer.Issue(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/complaints", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListComplaints_FilterAndStats(t *testing.T) {
	s := newTestServer(t)
	s.complaints.On("Query", mock.Anything, remote.Query{}.OrderBy("created_at", true)).Return([]models.Complaint{
		{ID: "a", Title: "Lights out", Status: models.StatusSubmitted},
		{ID: "b", Title: "Leaking tap", Status: models.StatusResolved},
		{ID: "c", Title: "Lab access", Status: models.StatusInProgress},
	}, nil)

	w := s.do(t, http.MethodGet, "/complaints?status=resolved", adminID, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	list := body["complaints"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].(map[string]any)["id"])
	assert.Equal(t, map[string]any{"total": 3.0, "pending": 1.0, "in_progress": 1.0, "resolved": 1.0}, body["stats"])
}

func TestGetComplaint_NotFoundIsLocalized(t *testing.T) {
	s := newTestServer(t)
	s.complaints.On("Query", mock.Anything, remote.Where("id", complaintID)).Return([]models.Complaint{}, nil)

	w := s.do(t, http.MethodGet, "/complaints/"+complaintID, studentID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Complaint not found", decode(t, w)["error"])

	w = s.do(t, http.MethodGet, "/complaints/"+complaintID, studentID, "", "Accept-Language", "uk-UA,uk;q=0.9")
	assert.Equal(t, "Скаргу не знайдено", decode(t, w)["error"])
}

func TestGetComplaint_MalformedIDIsNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/complaints/abc", studentID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Complaint not found", decode(t, w)["error"])

	w = s.do(t, http.MethodPatch, "/complaints/abc/status", adminID, `{"status":"closed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/complaints/abc/messages", studentID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.complaints.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestPostMessage_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/complaints/"+complaintID+"/messages", studentID, `{"message":"   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Message cannot be empty", body["error"])
	assert.Equal(t, "message", body["field"])
	s.messages.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)

	w = s.do(t, http.MethodPost, "/complaints/"+complaintID+"/messages", studentID, `{"message":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMessage_Created(t *testing.T) {
	s := newTestServer(t)
	s.complaints.On("Query", mock.Anything, remote.Where("id", complaintID)).
		Return([]models.Complaint{{ID: complaintID, StudentID: studentID}}, nil)
	s.messages.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.ChatMessage).CreatedAt = time.Now()
	}).Return(nil).Once()

	w := s.do(t, http.MethodPost, "/complaints/"+complaintID+"/messages", studentID,
		`{"id":"5b0f4a8e-3c1d-4f47-9b7e-2d1c0a9e8f61","message":"Hello"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "5b0f4a8e-3c1d-4f47-9b7e-2d1c0a9e8f61", body["id"])
	assert.Equal(t, studentID, body["user_id"])
}

func TestUpdateStatus_StudentForbidden(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPatch, "/complaints/c1/status", studentID, `{"status":"resolved"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	s.complaints.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransientErrorIs503(t *testing.T) {
	s := newTestServer(t)
	s.storage.On("ActiveCategories", mock.Anything).
		Return(nil, apperr.NewTransientError("load categories", errors.New("connection refused")))

	w := s.do(t, http.MethodGet, "/categories", studentID, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminUsers_SuperAdminOnly(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/admin/users", adminID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/admin/users/"+studentID, adminID, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.storage.AssertNotCalled(t, "DeleteProfile", mock.Anything, mock.Anything)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	s.storage.On("ProfileNames", mock.Anything, []string{adminID}).Return(map[string]string{adminID: "Dr. Rao"}, nil)

	w := s.do(t, http.MethodGet, "/me", adminID, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"user_id": adminID, "role": "admin", "full_name": "Dr. Rao"}, decode(t, w))
}
