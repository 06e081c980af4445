package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunFullSync pulls all remote billing state. Long-running; intended for
// operators behind the deployment's admin gate.
func (s *Server) RunFullSync(c *gin.Context) {
	result, err := s.syncerSvc.PullAll(c.Request.Context())
	if err != nil {
		s.log.Error("full sync failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
}

// ReloadSettings rebuilds stripe settings from their sources. Invalid
// settings leave the previous snapshot in place.
func (s *Server) ReloadSettings(c *gin.Context) {
	if err := s.settings.Reload(); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
