package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	User       string `json:"user"`
	SkipDialin bool   `json:"skip_dialin"`
}

type inputRequest struct {
	Line string `json:"line"`
}

type tokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
	User   string `json:"user"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "scosim",
		"sessions": len(s.sessions.List()),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// issueToken exchanges the API key for a short-lived JWT bound to a
// simulated user.
func (s *Server) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key is required"})
		return
	}
	if !s.auth.ValidateAPIKey(req.APIKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}
	user := req.User
	if user == "" {
		user = "root"
	}
	token, err := s.auth.GenerateToken(user, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	// empty body is fine, defaults apply
	_ = c.ShouldBindJSON(&req)

	sess, err := s.sessions.Create(req.User, req.SkipDialin)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (s *Server) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.sessions.List()})
}

func (s *Server) sessionInput(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "line is required"})
		return
	}

	if err := sess.Input(req.Line); err != nil {
		c.JSON(http.StatusGone, gin.H{"error": "session closed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (s *Server) sessionOutput(c *gin.Context) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"output": sess.Output(),
		"done":   sess.Done(),
	})
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
