package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createCheckoutSessionRequest struct {
	PriceID  string `json:"price_id" binding:"required"`
	Quantity int64  `json:"quantity"`
	Trial    *bool  `json:"trial"`
}

// CreateCheckoutSession starts a checkout session for the acting user.
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	trial := true
	if req.Trial != nil {
		trial = *req.Trial
	}

	session, err := s.checkoutSvc.CreateCheckoutSession(c.Request.Context(), userID, req.PriceID, req.Quantity, trial)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "url": session.URL})
}

// CreatePortalSession starts a billing portal session for the acting user.
func (s *Server) CreatePortalSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	session, err := s.checkoutSvc.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}
