package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lotcheck/logger"
	"lotcheck/storage"
	"lotcheck/types"
)

// RegisterUserRoutes registers user endpoints.
func (s *Server) RegisterUserRoutes(r *gin.Engine) {
	r.GET("/users", s.handleListUsers)
	r.POST("/users", s.handleCreateUser)
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.deps.Users.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	user, err := s.deps.Users.Create(c.Request.Context(), req.Username)
	switch {
	case errors.Is(err, storage.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, storage.ErrEmptyUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	logger.FromContext(c.Request.Context()).Info("User created",
		logger.Int64("user_id", user.ID),
		logger.String("username", user.Username),
	)
	c.JSON(http.StatusOK, user)
}
