package pageagent

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/web-summarizer/internal/domain/extraction"
)

// NewRouter exposes the agent protocol over HTTP.
func NewRouter(agent *Agent) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/messages", func(c *gin.Context) {
		var msg extraction.AgentMessage
		if err := c.ShouldBindJSON(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"text": nil, "error": err.Error()})
			return
		}
		reply, ok := agent.Reply(c.Request.Context(), msg)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"text": nil, "error": "unsupported message type: " + msg.Type})
			return
		}
		c.JSON(http.StatusOK, reply)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}
