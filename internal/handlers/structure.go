package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
	"github.com/edukraft/courseforge-backend/internal/services"
	"github.com/edukraft/courseforge-backend/internal/services/structurecache"
)

type StructureHandler struct {
	log      *logger.Logger
	gen      services.CourseGenerationService
	cache    structurecache.CacheService
	progress services.ProgressBus
}

func NewStructureHandler(
	log *logger.Logger,
	gen services.CourseGenerationService,
	cache structurecache.CacheService,
	progress services.ProgressBus,
) *StructureHandler {
	return &StructureHandler{
		log:      log.With("handler", "StructureHandler"),
		gen:      gen,
		cache:    cache,
		progress: progress,
	}
}

// POST /api/structures/generate
func (h *StructureHandler) Generate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.gen.Generate(c.Request.Context(), req)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
		return
	}
	RespondOK(c, result)
}

// GET /api/structures/find?subject=...&education_level=...
func (h *StructureHandler) Find(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("subject query param is required"))
		return
	}
	level := c.Query("education_level")

	structure, err := h.cache.FindExisting(c.Request.Context(), subject, level)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	if structure == nil {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("no cached structure for %q", subject))
		return
	}
	RespondOK(c, gin.H{"structure": structure})
}

type usageRequest struct {
	Reused         bool   `json:"reused"`
	UserIdentifier string `json:"user_identifier"`
}

// POST /api/structures/:id/usage
func (h *StructureHandler) RecordUsage(c *gin.Context) {
	structureID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid structure id"))
		return
	}
	var req usageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	h.cache.RecordUsage(c.Request.Context(), structureID, req.Reused, req.UserIdentifier)
	RespondOK(c, gin.H{"recorded": true})
}

type cleanupRequest struct {
	MaxAgeDays int `json:"max_age_days"`
}

// POST /api/structures/cleanup
func (h *StructureHandler) Cleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.MaxAgeDays <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("max_age_days must be positive"))
		return
	}

	removed, err := h.cache.CleanupOlderThan(c.Request.Context(), time.Duration(req.MaxAgeDays)*24*time.Hour)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "cleanup_failed", err)
		return
	}
	RespondOK(c, gin.H{"removed": removed})
}

// GET /api/structures/progress?request_id=...
//
// Streams generation progress as SSE. An empty request_id streams every
// event; the stream ends when the client disconnects.
func (h *StructureHandler) ProgressStream(c *gin.Context) {
	requestID := c.Query("request_id")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events := make(chan services.ProgressEvent, 16)
	unsubscribe := h.progress.Subscribe(func(ev services.ProgressEvent) {
		if requestID != "" && ev.RequestID != requestID {
			return
		}
		select {
		case events <- ev:
		default:
			// Slow consumer: drop rather than block the bus.
		}
	})
	defer unsubscribe()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-events:
			c.SSEvent("progress", ev)
			return ev.Stage != "done" && ev.Stage != "failed"
		case <-clientGone:
			return false
		}
	})
}
