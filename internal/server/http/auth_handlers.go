package http

import (
	nethttp "net/http"
	"strings"

	"github.com/chouaib-skitou/Festivio/internal/server/services"
	"github.com/gin-gonic/gin"
)

type emailRequest struct {
	Email string `json:"email"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handlers) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	user, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	c.JSON(nethttp.StatusCreated, gin.H{
		"message": "User registered successfully. Please check your email to verify your account.",
		"userId":  user.ID,
	})
}

func (h *Handlers) ResendVerification(c *gin.Context) {
	var in emailRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	if err := h.Auth.ResendVerification(c.Request.Context(), in.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Verification email sent"})
}

func (h *Handlers) VerifyEmail(c *gin.Context) {
	err := h.Auth.VerifyEmail(c.Request.Context(), c.Param("userId"), c.Param("token"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}

	if h.FrontendURL != "" {
		c.Redirect(nethttp.StatusFound, strings.TrimRight(h.FrontendURL, "/")+"/login")
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Email verified successfully"})
}

func (h *Handlers) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, session)
}

func (h *Handlers) RefreshToken(c *gin.Context) {
	var in refreshRequest
	// An empty or missing body is reported as a missing token.
	_ = c.ShouldBindJSON(&in)

	pair, err := h.Auth.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, pair)
}

func (h *Handlers) RequestPasswordReset(c *gin.Context) {
	var in emailRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	if err := h.Auth.RequestPasswordReset(c.Request.Context(), in.Email); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Password reset email sent"})
}

func (h *Handlers) ResetPassword(c *gin.Context) {
	var in services.ResetPasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	if err := h.Auth.ResetPassword(c.Request.Context(), c.Param("token"), in); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
