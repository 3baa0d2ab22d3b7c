package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	"github.com/noah-isme/gpa-transcript-api/pkg/config"
	"github.com/noah-isme/gpa-transcript-api/pkg/database"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		APIPrefix: "/api/v1",
		Database:  config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"},
		JWT:       config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
		Exports: config.ExportsConfig{
			StorageDir:      t.TempDir(),
			SignedURLSecret: "export-secret",
			SignedURLTTL:    time.Hour,
		},
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	application, err := newApp(cfg, zap.NewNop(), db, nil, transcript.Options{
		Policy:    transcript.PolicySemesterMean,
		Direction: transcript.DirectionEarlier,
	})
	require.NoError(t, err)

	return &testServer{t: t, router: newRouter(cfg, zap.NewNop(), application.routes)}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) data(rec *httptest.ResponseRecorder, dest interface{}) map[string]interface{} {
	s.t.Helper()
	var env struct {
		Data json.RawMessage        `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	if dest != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, dest))
	}
	return env.Meta
}

func (s *testServer) signup(username, password string) int {
	s.t.Helper()
	s.token = ""
	return s.do(http.MethodPost, "/api/v1/auth/signup", map[string]string{"username": username, "password": password}).Code
}

func (s *testServer) loginAs(username, password string) {
	s.t.Helper()
	s.token = ""
	rec := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	s.data(rec, &login)
	require.NotEmpty(s.t, login.AccessToken)
	s.token = login.AccessToken
}

func course(code, semester string, ch, score int) map[string]interface{} {
	return map[string]interface{}{
		"course_code":  code,
		"course_title": code + " title",
		"semester":     semester,
		"session":      "2023/2024",
		"level":        "100L",
		"credit_hours": ch,
		"score":        score,
	}
}

func TestProbesAndDocs(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/docs/index.html", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/transcript", nil).Code)
}

func TestTranscriptLifecycle(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.signup("ada", "lovelace"))
	s.loginAs("ada", "lovelace")

	var created struct {
		ID    string  `json:"id"`
		Grade string  `json:"grade"`
		QP    float64 `json:"qp"`
	}
	rec := s.do(http.MethodPost, "/api/v1/courses", course("mth101", "first semester", 3, 30))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s.data(rec, &created)
	assert.Equal(t, "F", created.Grade)
	firstID := created.ID

	rec = s.do(http.MethodPost, "/api/v1/courses", course("MTH101", "SECOND SEMESTER", 3, 55))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/courses", course("PHY101", "SECOND SEMESTER", 3, 101))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var result struct {
		Policy    string `json:"policy"`
		Semesters []struct {
			Rows []struct {
				CourseCode           string  `json:"course_code"`
				CreditHoursDisplay   string  `json:"credit_hours_display"`
				DisplayQualityPoints float64 `json:"display_quality_points"`
				CarriedOver          bool    `json:"carried_over"`
			} `json:"rows"`
		} `json:"semesters"`
		Stats struct {
			TotalCourses int `json:"total_courses"`
			CGPA         struct {
				Display string `json:"display"`
			} `json:"cgpa"`
		} `json:"stats"`
	}
	rec = s.do(http.MethodGet, "/api/v1/transcript", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	meta := s.data(rec, &result)
	assert.Contains(t, meta, "cache_hit")
	assert.Contains(t, meta, "processing_time_ms")
	assert.Equal(t, "semester_mean", result.Policy)
	require.Len(t, result.Semesters, 2)
	assert.Equal(t, "3→6", result.Semesters[0].Rows[0].CreditHoursDisplay)
	assert.Equal(t, 0.0, result.Semesters[0].Rows[0].DisplayQualityPoints)
	assert.True(t, result.Semesters[1].Rows[0].CarriedOver)
	assert.Equal(t, 18.0, result.Semesters[1].Rows[0].DisplayQualityPoints)
	assert.Equal(t, 2, result.Stats.TotalCourses)
	// (0.00 + 3.00) / 2
	assert.Equal(t, "1.50", result.Stats.CGPA.Display)

	rec = s.do(http.MethodGet, "/api/v1/transcript?policy=credit_weighted", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.data(rec, &result)
	assert.Equal(t, "3.00", result.Stats.CGPA.Display)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/transcript?carry_over=sideways", nil).Code)

	rec = s.do(http.MethodPost, "/api/v1/transcript/exports", map[string]string{"format": "csv"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var exported struct {
		URL string `json:"url"`
	}
	s.data(rec, &exported)
	require.True(t, strings.HasPrefix(exported.URL, "/api/v1/exports/"))

	s.token = ""
	rec = s.do(http.MethodGet, exported.URL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MTH101")
	s.loginAs("ada", "lovelace")

	rec = s.do(http.MethodDelete, "/api/v1/courses/"+firstID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/api/v1/courses/"+firstID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/transcript", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.data(rec, &result)
	require.Len(t, result.Semesters, 1)
	assert.Equal(t, "3", result.Semesters[0].Rows[0].CreditHoursDisplay)
	assert.False(t, result.Semesters[0].Rows[0].CarriedOver)
}

func TestRecordsAreScopedPerUser(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.signup("ada", "lovelace"))
	s.loginAs("ada", "lovelace")
	rec := s.do(http.MethodPost, "/api/v1/courses", course("MTH101", "FIRST SEMESTER", 3, 75))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, http.StatusCreated, s.signup("grace", "hopper"))
	s.loginAs("grace", "hopper")

	var courses []map[string]interface{}
	rec = s.do(http.MethodGet, "/api/v1/courses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.data(rec, &courses)
	assert.Empty(t, courses)

	assert.Equal(t, http.StatusConflict, s.signup("grace", "hopper"))
}
