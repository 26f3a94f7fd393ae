package http

import (
	"errors"
	nethttp "net/http"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/logging"
	"github.com/gin-gonic/gin"
)

const serverErrorMessage = "Server error"

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable is checked in order with errors.Is.
var errorTable = []errorMapping{
	{common.ErrMissingToken, nethttp.StatusUnauthorized, "Refresh token required"},
	{common.ErrInvalidRefreshToken, nethttp.StatusForbidden, "Invalid refresh token"},
	{common.ErrEmailNotVerified, nethttp.StatusUnauthorized, "Please verify your email before logging in."},
	{common.ErrorUnauthorized, nethttp.StatusUnauthorized, "Unauthorized"},

	{common.ErrAccessDenied, nethttp.StatusForbidden, "Access denied"},
	{common.ErrOrganizerMismatch, nethttp.StatusForbidden, "Organizer must be the authenticated user"},

	{common.ErrorNotFound, nethttp.StatusNotFound, "Not found"},

	{common.ErrAlreadyParticipating, nethttp.StatusConflict, "Already participating in this event"},
	{common.ErrNotParticipating, nethttp.StatusConflict, "Not participating in this event"},

	{common.ErrDuplicateUnverified, nethttp.StatusBadRequest, "User already exists but email is not verified. Please check your inbox."},
	{common.ErrDuplicateEmail, nethttp.StatusBadRequest, "User already exists."},
	{common.ErrAlreadyVerified, nethttp.StatusBadRequest, "User is already verified"},
	{common.ErrInvalidToken, nethttp.StatusBadRequest, "Invalid token"},
	{common.ErrInvalidCredentials, nethttp.StatusBadRequest, "Invalid credentials"},
	{common.ErrPasswordMismatch, nethttp.StatusBadRequest, "Passwords do not match"},
	{common.ErrInvalidOrExpiredToken, nethttp.StatusBadRequest, "Invalid or expired token"},
}

// statusFor maps a service error to its HTTP status and client message.
// Unknown errors are 500 with a fixed message.
func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return nethttp.StatusBadRequest, "Validation failed"
	}
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.message
		}
	}
	return nethttp.StatusInternalServerError, serverErrorMessage
}

func writeError(c *gin.Context, logger logging.Logger, err error) {
	status, msg := statusFor(err)

	body := gin.H{"message": msg}
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		body["errors"] = ve.Fields
	}

	if status == nethttp.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(nethttp.StatusBadRequest, gin.H{"message": "Invalid request body"})
}
