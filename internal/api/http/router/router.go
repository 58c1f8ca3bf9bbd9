package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dtroode/credential-server/internal/api/http/handler"
	"github.com/dtroode/credential-server/internal/api/http/middleware"
	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// Router wires HTTP handlers and middleware.
type Router struct {
	authService    handler.AuthService
	userService    handler.UserService
	authenticator  middleware.Authenticator
	health         handler.HealthChecker
	contextManager model.ContextManager
	corsOrigins    []string
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService handler.AuthService,
	userService handler.UserService,
	authenticator middleware.Authenticator,
	health handler.HealthChecker,
	contextManager model.ContextManager,
	corsOrigins []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		userService:    userService,
		authenticator:  authenticator,
		health:         health,
		contextManager: contextManager,
		corsOrigins:    corsOrigins,
		logger:         logger,
	}
}

// Register builds the gin engine with every route.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authenticator, r.contextManager, r.logger)

	engine := gin.New()
	engine.Use(logging.Handle, gin.Recovery(), middleware.CORS(r.corsOrigins))

	r.registerHealthRoutes(engine)
	r.registerAuthRoutes(engine, authenticate)
	r.registerUserRoutes(engine, authenticate)

	return engine
}

func (r *Router) registerHealthRoutes(engine *gin.Engine) {
	healthHandler := handler.NewHealth(r.health, r.logger)
	engine.GET("/health", healthHandler.Live)
	engine.GET("/healthz", healthHandler.Ready)
}

func (r *Router) registerAuthRoutes(engine *gin.Engine, authenticate *middleware.Authenticate) {
	authHandler := handler.NewAuth(r.authService, r.contextManager, r.logger)

	engine.POST("/register", authHandler.Register)
	engine.POST("/login", authHandler.Login)
	engine.POST("/google", authHandler.Google)
	engine.POST("/refresh-token", authHandler.RefreshToken)
	engine.POST("/forgot-password", authHandler.ForgotPassword)
	engine.POST("/verify-otp", authHandler.VerifyOTP)
	engine.POST("/reset-password", authHandler.ResetPassword)

	protected := engine.Group("", authenticate.Handle)
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", authHandler.Me)
	protected.POST("/change-password", authHandler.ChangePassword)
}

func (r *Router) registerUserRoutes(engine *gin.Engine, authenticate *middleware.Authenticate) {
	usersHandler := handler.NewUsers(r.userService, r.logger)

	admin := engine.Group("/users", authenticate.Handle, authenticate.RequireRole(model.RoleAdmin))
	admin.GET("", usersHandler.List)
	admin.PUT("/role", usersHandler.UpdateRole)
	admin.GET("/:id", usersHandler.Get)
	admin.DELETE("/:id", usersHandler.Deactivate)
}
