package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gpa-transcript-api/internal/middleware"
	"github.com/noah-isme/gpa-transcript-api/internal/service"
	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	appErrors "github.com/noah-isme/gpa-transcript-api/pkg/errors"
	"github.com/noah-isme/gpa-transcript-api/pkg/response"
)

type transcriptService interface {
	Compute(ctx context.Context, userID string, query service.TranscriptQuery) (*transcript.Transcript, bool, error)
}

// TranscriptHandler serves the computed transcript.
type TranscriptHandler struct {
	service transcriptService
}

// NewTranscriptHandler constructs the handler.
func NewTranscriptHandler(service transcriptService) *TranscriptHandler {
	return &TranscriptHandler{service: service}
}

// Get godoc
// @Summary Computed transcript
// @Description Semester tables, latest attempts and cumulative figures, rebuilt from the full record set.
// @Tags Transcript
// @Produce json
// @Security BearerAuth
// @Param policy query string false "credit_weighted or semester_mean"
// @Param carry_over query string false "earlier or later"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /transcript [get]
func (h *TranscriptHandler) Get(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	start := time.Now()
	query := service.TranscriptQuery{Policy: c.Query("policy"), CarryOver: c.Query("carry_over")}
	result, cacheHit, err := h.service.Compute(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, nil, middleware.MetaSince(c, start))
}
