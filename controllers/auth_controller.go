package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/middleware"
	"github.com/Riyogosaki/Crystal/services"
)

// SignupRequest is the signup payload.
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	auth   *services.AuthService
	logger *zap.Logger
}

func NewAuthController(auth *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// Signup registers a new account and starts its session.
func (ac *AuthController) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	user, token, err := ac.auth.Register(c.Request.Context(), req.FullName, req.Username, req.Email, req.Password)
	if err != nil {
		ac.logger.Warn("signup rejected", zap.Error(err))
		apperrors.Respond(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusCreated, user.Public())
}

// Login verifies credentials and starts a fresh session.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	user, token, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	setSessionCookie(c, token)
	c.JSON(http.StatusOK, user.Public())
}

// Logout instructs the client to discard its token by overwriting the
// cookie with an expired one. The token scheme is stateless, so there
// is no server-side revocation.
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the account behind the current session.
func (ac *AuthController) Me(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	user, err := ac.auth.GetMe(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// setSessionCookie attaches the session token as an HTTP-only cookie so
// page scripts cannot read it.
func setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookieName, token, int(services.SessionTTL.Seconds()), "/", "", false, true)
}
