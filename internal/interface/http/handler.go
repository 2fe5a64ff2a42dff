package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
	apperrors "github.com/yanqian/semantic-faq/pkg/errors"
)

// Handler wires the HTTP transport to the FAQ service.
type Handler struct {
	faqSvc faq.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(faqSvc faq.Service, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc: faqSvc,
		logger: logger.With("component", "http.handler"),
	}
}

// Health reports liveness together with the engine mode.
func (h *Handler) Health(c *gin.Context) {
	stats, err := h.faqSvc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "fallbackMode": stats.Engine.FallbackMode})
}

// Ask answers a question with the best match and a shortlist of related questions.
func (h *Handler) Ask(c *gin.Context) {
	var req faq.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.faqSvc.Ask(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Similar returns the top-k closest corpus questions.
func (h *Handler) Similar(c *gin.Context) {
	var req faq.SimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.faqSvc.Similar(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListQuestions returns the flattened corpus.
func (h *Handler) ListQuestions(c *gin.Context) {
	entries, err := h.faqSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": entries, "total": len(entries)})
}

// Categories lists categories and their sizes.
func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.faqSvc.Categories(c.Request.Context())
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Search runs a substring search over questions and answers.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	hits, err := h.faqSvc.Search(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": hits})
}

// Trending returns the most common questions.
func (h *Handler) Trending(c *gin.Context) {
	items, err := h.faqSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items})
}

// Stats exposes engine status and query counters.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.faqSvc.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AddQuestion appends a question to the corpus.
func (h *Handler) AddQuestion(c *gin.Context) {
	var req faq.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.faqSvc.AddEntry(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}

	if claims, ok := getClaims(c); ok {
		h.logger.Info("faq question added", "userId", claims.UserID, "category", resp.Entry.Category)
	}
	c.JSON(http.StatusCreated, resp)
}

// Rebuild re-embeds the corpus.
func (h *Handler) Rebuild(c *gin.Context) {
	status, err := h.faqSvc.Rebuild(c.Request.Context())
	if err != nil {
		abortWithError(c, faqError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func faqError(err error) *HTTPError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeFAQSaveFailed:
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeFAQSaveFailed, errMessage(err), err)
	case apperrors.CodeProviderError:
		return NewHTTPError(http.StatusServiceUnavailable, apperrors.CodeProviderError, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "faq_failed", errMessage(err), err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
