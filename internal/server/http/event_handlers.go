package http

import (
	nethttp "net/http"

	"github.com/chouaib-skitou/Festivio/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListEvents(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	list, err := h.Events.List(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"events": list})
}

func (h *Handlers) CreateEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var in services.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	event, err := h.Events.Create(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusCreated, gin.H{"message": "Event created successfully", "event": event})
}

func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	event, err := h.Events.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, event)
}

func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var in services.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	event, err := h.Events.Update(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Event updated successfully", "event": event})
}

func (h *Handlers) PatchEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var in services.EventPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	event, err := h.Events.Patch(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Event updated successfully", "event": event})
}

func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.Events.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Event deleted successfully"})
}

func (h *Handlers) Participate(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.Events.Participate(c.Request.Context(), id, c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Joined event"})
}

func (h *Handlers) Unparticipate(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.Events.Unparticipate(c.Request.Context(), id, c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Left event"})
}

func (h *Handlers) ImageUploadURL(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	up, err := h.Events.ImageUploadURL(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, up)
}

func (h *Handlers) ImageURL(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	url, err := h.Events.ImageURL(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"url": url})
}
