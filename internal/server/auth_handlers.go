package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niteshj11/kudoboard/internal/auth"
	"github.com/niteshj11/kudoboard/internal/users"
	"go.uber.org/zap"
)

type registerPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleSignInPayload struct {
	GoogleID  string `json:"googleId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

type authResponsePayload struct {
	User  users.User `json:"user"`
	Token string     `json:"token"`
}

func (h *httpHandler) handleRegister(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		h.writeDomainError(c, err, "auth.register")
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed"})
		return
	}

	user, err := h.users.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeDomainError(c, err, "auth.login")
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *httpHandler) handleGoogleSignIn(c *gin.Context) {
	var payload googleSignInPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.GoogleID == "" || payload.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Google ID and email required"})
		return
	}

	user, err := h.users.ResolveGoogle(c.Request.Context(), users.GoogleProfile{
		GoogleID:  payload.GoogleID,
		Email:     payload.Email,
		Name:      payload.Name,
		AvatarURL: payload.AvatarURL,
	})
	if err != nil {
		h.writeDomainError(c, err, "auth.google")
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *httpHandler) handleCurrentUser(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		h.writeDomainError(c, err, "auth.me")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *httpHandler) respondWithToken(c *gin.Context, status int, user users.User) {
	token, _, err := h.tokens.IssueToken(auth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(status, authResponsePayload{User: user, Token: token})
}
