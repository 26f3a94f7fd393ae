package http

import (
	nethttp "net/http"

	"github.com/chouaib-skitou/Festivio/internal/server/services"
	"github.com/gin-gonic/gin"
)

// ListTasks accepts an optional ?event=<id> filter.
func (h *Handlers) ListTasks(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	list, err := h.Tasks.List(c.Request.Context(), id, c.Query("event"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"tasks": list})
}

func (h *Handlers) CreateTask(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var in services.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusCreated, gin.H{"message": "Task created successfully", "task": task})
}

func (h *Handlers) GetTask(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	task, err := h.Tasks.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, task)
}

func (h *Handlers) UpdateTask(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var in services.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Task updated successfully", "task": task})
}

func (h *Handlers) PatchTask(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var in services.TaskPatch
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}

	task, err := h.Tasks.Patch(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Task updated successfully", "task": task})
}

func (h *Handlers) DeleteTask(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(nethttp.StatusOK, gin.H{"message": "Task deleted successfully"})
}
