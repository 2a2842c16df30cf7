package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"public-complaint-api/middleware"
	"public-complaint-api/models"
	"public-complaint-api/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type authPayload struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
}

// POST /register
func (ac *AuthController) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	user, token, err := ac.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Registrasi berhasil", authPayload{User: user, Token: token, TokenType: "Bearer"})
}

// POST /login
func (ac *AuthController) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	user, token, err := ac.auth.Login(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			respondMessage(c, http.StatusUnauthorized, "Email atau password salah, atau akun tidak aktif")
			return
		}
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Login berhasil", authPayload{User: user, Token: token, TokenType: "Bearer"})
}

// POST /logout
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.auth.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Logout berhasil", nil)
}

// GET /user
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.auth.Me(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", user)
}

// PUT /user/profile
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := ac.auth.UpdateProfile(c.Request.Context(), middleware.CurrentActor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Profil berhasil diperbarui", user)
}

// PUT /user/password
func (ac *AuthController) UpdatePassword(c *gin.Context) {
	var in services.PasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	if err := ac.auth.ChangePassword(c.Request.Context(), middleware.CurrentActor(c), in); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Password berhasil diperbarui", nil)
}
