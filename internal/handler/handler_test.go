package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gpa-transcript-api/internal/middleware"
	"github.com/noah-isme/gpa-transcript-api/internal/models"
	"github.com/noah-isme/gpa-transcript-api/internal/service"
	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	appErrors "github.com/noah-isme/gpa-transcript-api/pkg/errors"
)

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func authenticate(c *gin.Context, userID string) {
	c.Set(middleware.ContextClaimsKey, &models.JWTClaims{UserID: userID, Username: "ada"})
	c.Set(middleware.ContextUserIDKey, userID)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type authServiceMock struct {
	signupReq  models.SignupRequest
	signupResp *models.UserInfo
	signupErr  error
	loginResp  *models.LoginResponse
	loginErr   error
}

func (m *authServiceMock) Signup(ctx context.Context, req models.SignupRequest) (*models.UserInfo, error) {
	m.signupReq = req
	return m.signupResp, m.signupErr
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func TestAuthHandlerSignup(t *testing.T) {
	mockSvc := &authServiceMock{signupResp: &models.UserInfo{ID: "u1", Username: "ada"}}
	h := NewAuthHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/auth/signup", []byte(`{"username":"ada","password":"lovelace"}`))
	h.Signup(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ada", mockSvc.signupReq.Username)
	assert.JSONEq(t, `{"id":"u1","username":"ada"}`, string(decode(t, w).Data))
}

func TestAuthHandlerSignupConflict(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{signupErr: appErrors.Clone(appErrors.ErrConflict, "username already taken")})

	c, w := newGinContext(http.MethodPost, "/auth/signup", []byte(`{"username":"ada","password":"lovelace"}`))
	h.Signup(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrConflict.Code, decode(t, w).Error.Code)
}

func TestAuthHandlerLoginBadBody(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{})

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte(`{"username":`))
	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials})

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte(`{"username":"ada","password":"nope"}`))
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{})

	c, w := newGinContext(http.MethodGet, "/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodGet, "/auth/me", nil)
	authenticate(c, "u1")
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","username":"ada"}`, string(decode(t, w).Data))
}

type courseServiceMock struct {
	listResp  []models.Course
	listHit   bool
	listErr   error
	created   models.CourseDraft
	createErr error
	deletedID string
	deleteErr error
	userID    string
}

func (m *courseServiceMock) List(ctx context.Context, userID string) ([]models.Course, bool, error) {
	m.userID = userID
	return m.listResp, m.listHit, m.listErr
}

func (m *courseServiceMock) Create(ctx context.Context, userID string, draft models.CourseDraft) (*models.Course, error) {
	m.userID = userID
	m.created = draft
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.Course{ID: "c1", UserID: userID, CourseCode: draft.CourseCode, Score: *draft.Score, Grade: "A"}, nil
}

func (m *courseServiceMock) Delete(ctx context.Context, userID, id string) error {
	m.userID = userID
	m.deletedID = id
	return m.deleteErr
}

func TestCourseHandlerRequiresIdentity(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{})

	c, w := newGinContext(http.MethodGet, "/courses", nil)
	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCourseHandlerList(t *testing.T) {
	mockSvc := &courseServiceMock{listResp: []models.Course{{ID: "c1", CourseCode: "MTH101"}}, listHit: true}
	h := NewCourseHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/courses", nil)
	authenticate(c, "u1")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", mockSvc.userID)
	env := decode(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
}

func TestCourseHandlerCreate(t *testing.T) {
	mockSvc := &courseServiceMock{}
	h := NewCourseHandler(mockSvc)

	body := `{"course_code":"MTH101","course_title":"Calculus","semester":"FIRST SEMESTER","session":"2023/2024","level":"100L","credit_hours":3,"score":0}`
	c, w := newGinContext(http.MethodPost, "/courses", []byte(body))
	authenticate(c, "u1")
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mockSvc.created.Score)
	assert.Equal(t, 0, *mockSvc.created.Score)
	assert.Equal(t, 3, mockSvc.created.CreditHours)
}

func TestCourseHandlerCreateStoreUnavailable(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{createErr: appErrors.StoreUnavailable(errors.New("dial tcp: refused"))})

	c, w := newGinContext(http.MethodPost, "/courses", []byte(`{"course_code":"MTH101","score":50}`))
	authenticate(c, "u1")
	h.Create(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, decode(t, w).Error.Code)
}

func TestCourseHandlerDelete(t *testing.T) {
	mockSvc := &courseServiceMock{}
	h := NewCourseHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/courses/c9", nil)
	c.Params = gin.Params{{Key: "id", Value: "c9"}}
	authenticate(c, "u1")
	h.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "c9", mockSvc.deletedID)

	mockSvc.deleteErr = appErrors.Clone(appErrors.ErrNotFound, "course not found")
	c, w = newGinContext(http.MethodDelete, "/courses/c9", nil)
	c.Params = gin.Params{{Key: "id", Value: "c9"}}
	authenticate(c, "u1")
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type transcriptServiceMock struct {
	query  service.TranscriptQuery
	result *transcript.Transcript
	hit    bool
	err    error
}

func (m *transcriptServiceMock) Compute(ctx context.Context, userID string, query service.TranscriptQuery) (*transcript.Transcript, bool, error) {
	m.query = query
	return m.result, m.hit, m.err
}

func TestTranscriptHandlerGet(t *testing.T) {
	snapshot, err := transcript.Build([]transcript.Attempt{{
		ID: "a1", CourseCode: "MTH101", Semester: "FIRST SEMESTER", Session: "2023/2024", CreditHours: 3, Score: 75,
	}})
	require.NoError(t, err)
	mockSvc := &transcriptServiceMock{result: transcript.Compute(snapshot, transcript.Options{})}
	h := NewTranscriptHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/transcript?policy=credit_weighted&carry_over=later", nil)
	authenticate(c, "u1")
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.TranscriptQuery{Policy: "credit_weighted", CarryOver: "later"}, mockSvc.query)

	env := decode(t, w)
	assert.Equal(t, false, env.Meta["cache_hit"])
	var body struct {
		Stats struct {
			TotalCourses int `json:"total_courses"`
			CGPA         struct {
				Display string `json:"display"`
			} `json:"cgpa"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, 1, body.Stats.TotalCourses)
	assert.Equal(t, "5.00", body.Stats.CGPA.Display)
}

func TestTranscriptHandlerBadPolicy(t *testing.T) {
	h := NewTranscriptHandler(&transcriptServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "policy must be credit_weighted or semester_mean")})

	c, w := newGinContext(http.MethodGet, "/transcript?policy=median", nil)
	authenticate(c, "u1")
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type exportServiceMock struct {
	req       models.ExportRequest
	result    *models.ExportResult
	err       error
	file      *service.ExportFile
	openErr   error
	openToken string
}

func (m *exportServiceMock) Generate(ctx context.Context, userID string, req models.ExportRequest) (*models.ExportResult, error) {
	m.req = req
	return m.result, m.err
}

func (m *exportServiceMock) Open(token string) (*service.ExportFile, error) {
	m.openToken = token
	return m.file, m.openErr
}

func TestExportHandlerCreate(t *testing.T) {
	mockSvc := &exportServiceMock{result: &models.ExportResult{Format: models.ExportFormatPDF, URL: "/api/v1/exports/tok"}}
	h := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/transcript/exports", []byte(`{"format":"pdf","policy":"credit_weighted"}`))
	authenticate(c, "u1")
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.ExportFormatPDF, mockSvc.req.Format)
	assert.Equal(t, "credit_weighted", mockSvc.req.Policy)
}

func TestExportHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.csv")
	require.NoError(t, os.WriteFile(path, []byte("Academic Transcript\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	mockSvc := &exportServiceMock{file: &service.ExportFile{File: file, Name: "transcript.csv", ContentType: "text/csv; charset=utf-8"}}
	h := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", mockSvc.openToken)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transcript.csv")
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "Academic Transcript\n", string(body))
}

func TestExportHandlerDownloadExpired(t *testing.T) {
	h := NewExportHandler(&exportServiceMock{openErr: appErrors.Clone(appErrors.ErrNotFound, "export link expired")})

	c, w := newGinContext(http.MethodGet, "/exports/tok", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}
	h.Download(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
	})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"])
	assert.Equal(t, "ok", body.Checks["database"])
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), nil)
	c, w := newGinContext(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goroutines_total")

	h = NewMetricsHandler(nil, nil)
	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
