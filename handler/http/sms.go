package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"swasthya/src/transliterate"
)

// SMS answers a question arriving over the SMS gateway webhook. The message
// body is normalized to Devanagari before entering the answering path, and
// the reply is plain text with no structured fields.
func (h *Handler) SMS(c *gin.Context) {
	body := c.PostForm("Body")
	if body == "" {
		raw, err := io.ReadAll(c.Request.Body)
		if err == nil {
			body = string(raw)
		}
	}

	body = strings.TrimSpace(body)
	if body == "" {
		c.String(http.StatusOK, transliterate.UnintelligibleReply)
		return
	}

	question := h.normalizer.Normalize(body)
	if question == transliterate.UnintelligibleReply {
		c.String(http.StatusOK, question)
		return
	}

	reply := h.synthesizer.Answer(c.Request.Context(), question)

	c.String(http.StatusOK, reply)
}
