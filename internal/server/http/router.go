package http

import (
	"github.com/chouaib-skitou/Festivio/internal/logging"
	"github.com/chouaib-skitou/Festivio/internal/server/services"
	"github.com/gin-gonic/gin"
)

// Handlers binds HTTP requests to the services.
type Handlers struct {
	Auth   *services.AuthService
	Events *services.EventService
	Tasks  *services.TaskService
	Users  *services.UserService

	// FrontendURL, when set, is where a successful email verification
	// redirects to (FrontendURL/login).
	FrontendURL string

	// Health reports store reachability for /healthz. Nil means always up.
	Health Pinger

	Logger logging.Logger
}

// NewRouter wires gin routes and middleware.
func NewRouter(h *Handlers, tokens TokenVerifier) *gin.Engine {
	if h.Logger == nil {
		h.Logger = logging.Nop{}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(h.Logger))

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/resend-verification", h.ResendVerification)
		authGroup.GET("/verify-email/:userId/:token", h.VerifyEmail)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh-token", h.RefreshToken)
		authGroup.POST("/reset-password-request", h.RequestPasswordReset)
		authGroup.POST("/reset-password/:token", h.ResetPassword)
	}

	protected := api.Group("", RequireAuth(tokens))

	events := protected.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.POST("", h.CreateEvent)
		events.GET("/:id", h.GetEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.PATCH("/:id", h.PatchEvent)
		events.DELETE("/:id", h.DeleteEvent)
		events.POST("/:id/participants", h.Participate)
		events.DELETE("/:id/participants", h.Unparticipate)
		events.POST("/:id/image-upload-url", h.ImageUploadURL)
		events.GET("/:id/image-url", h.ImageURL)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id", h.PatchTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	users := protected.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/me", h.Me)
		users.PATCH("/:id", h.UpdateProfile)
	}

	return r
}
