package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListPrices returns active prices of active products, the public catalog.
func (s *Server) ListPrices(c *gin.Context) {
	prices, err := s.priceSvc.ListPublic(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": prices})
}

// ListSubscribablePrices returns the public catalog minus products the acting
// user already holds a current subscription for.
func (s *Server) ListSubscribablePrices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	prices, err := s.priceSvc.ListSubscribable(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prices": prices})
}
