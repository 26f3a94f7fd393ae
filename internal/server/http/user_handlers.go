package http

import (
	nethttp "net/http"

	"github.com/chouaib-skitou/Festivio/internal/server/services"
	"github.com/gin-gonic/gin"
)

// ListUsers accepts an optional ?role= filter.
func (h *Handlers) ListUsers(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	list, err := h.Users.List(c.Request.Context(), id, c.Query("role"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"users": list})
}

func (h *Handlers) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	me, err := h.Users.Me(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, me)
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var in services.ProfileUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}
