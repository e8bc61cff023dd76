package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcoding "github.com/andraa0104/isystem-1-sub006/internal/application/coding"
	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/logger"
	"github.com/andraa0104/isystem-1-sub006/internal/interfaces/http/middleware"
)

// SuggestionHandler serves the voucher coding suggestion endpoint
type SuggestionHandler struct {
	BaseHandler
	suggester appcoding.Suggester
	logger    *zap.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler
func NewSuggestionHandler(suggester appcoding.Suggester, log *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggester: suggester, logger: log}
}

// Suggest handles POST /vouchers/suggest. The suggestion itself never
// fails: degraded inputs come back as weaker suggestions, so the only
// error responses here are binding failures.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req appcoding.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp := h.suggester.Suggest(c.Request.Context(), req)

	logger.FromContext(c, h.logger).Info("voucher suggestion served",
		zap.String("mode", req.Mode),
		zap.String("kode_akun", resp.KodeAkun),
		zap.Int("lines", len(resp.Lines)),
		zap.Float64("confidence", resp.Confidence["overall"]),
	)
	h.Success(c, resp)
}

// RegisterRoutes registers the suggestion routes
func (h *SuggestionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("/suggest", h.Suggest)
	}
}
