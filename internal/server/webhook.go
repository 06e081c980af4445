package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// stripe documents webhook payloads well under this; a hard cap keeps a
// misbehaving sender from buffering unbounded bodies
const maxWebhookBody = 1 << 20

const signatureHeader = "Stripe-Signature"

// HandleStripeWebhook receives provider event deliveries.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	receipt, err := s.dispatcher.Handle(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipt)
}
