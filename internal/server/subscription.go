package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListSubscriptions returns the acting user's subscriptions. With
// ?current=true only access-granting statuses are included.
func (s *Server) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	currentOnly := c.Query("current") == "true"

	subscriptions, err := s.subscriptionSvc.ListByUser(c.Request.Context(), userID, currentOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": subscriptions})
}

// ListSubscriptionItems returns the line items of the acting user's
// subscriptions, optionally restricted to current ones.
func (s *Server) ListSubscriptionItems(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	currentOnly := c.Query("current") == "true"

	items, err := s.subscriptionSvc.ListItemsByUser(c.Request.Context(), userID, currentOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
