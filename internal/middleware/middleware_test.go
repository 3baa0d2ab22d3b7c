package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gpa-transcript-api/internal/models"
	"github.com/noah-isme/gpa-transcript-api/internal/service"
	appErrors "github.com/noah-isme/gpa-transcript-api/pkg/errors"
)

type validatorFunc func(string) (*models.JWTClaims, error)

func (f validatorFunc) ValidateToken(token string) (*models.JWTClaims, error) {
	return f(token)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(v TokenValidator) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWT(v), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserIDKey))
	})
	return r
}

func TestJWTAcceptsValidToken(t *testing.T) {
	r := protectedRouter(validatorFunc(func(token string) (*models.JWTClaims, error) {
		require.Equal(t, "good", token)
		return &models.JWTClaims{UserID: "user-1"}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestJWTRejectsMissingOrBadHeaders(t *testing.T) {
	r := protectedRouter(validatorFunc(func(string) (*models.JWTClaims, error) {
		return nil, appErrors.Wrap(errors.New("expired"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}))

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer expired"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, appErrors.ErrUnauthorized.Code, body.Error.Code)
	}
}

func TestResponseMeta(t *testing.T) {
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/meta", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, MetaSince(c, time.Now().Add(-5*time.Millisecond)))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta", nil))

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, true, meta["cache_hit"])
	assert.GreaterOrEqual(t, meta["processing_time_ms"].(float64), 5.0)
}

func TestMetricsMiddlewareLabelsRoutes(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/courses/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `path="/courses/:id"`))
	assert.True(t, strings.Contains(body, `path="unmatched"`))
}
