package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChatRequest is the web channel request body
type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

// ChatResponse is the web channel response body
type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat answers a question from the web channel. The answering path never
// fails toward the caller; worst case the reply is the fixed fallback.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "question is required",
		})
		return
	}

	reply := h.synthesizer.Answer(c.Request.Context(), req.Question)

	c.JSON(http.StatusOK, ChatResponse{Answer: reply})
}
