package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	"miheater/internal/logger"
	"miheater/internal/service"
)

// Config tunes the HTTP layer. Hub, when set, must also be registered as a
// state sink so /ws clients receive refreshed snapshots.
type Config struct {
	RateLimitPerSec float64
	RateBurst       int
	Hub             *Hub
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	cfg      Config
	hub      *Hub
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, cfg Config) *Handler {
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub()
	}
	return &Handler{services: services, log: log, cfg: cfg, hub: hub}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	mw := []gin.HandlerFunc{h.userIdMiddleware}
	if h.cfg.RateLimitPerSec > 0 {
		mw = append([]gin.HandlerFunc{RateLimiter(rate.Limit(h.cfg.RateLimitPerSec), h.cfg.RateBurst)}, mw...)
	}
	api := r.Group("/api/v1", mw...)
	{
		h.registerHeaterRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerHeaterRoutes(api *gin.RouterGroup) {
	heater := api.Group("/heater")
	{
		heater.GET("/state", h.getState)
		heater.POST("/refresh", h.refreshState)
		heater.GET("/model", h.getModel)
		heater.POST("/on", h.powerOn)
		heater.POST("/off", h.powerOff)
		heater.POST("/target-temperature", h.setTargetTemperature)
		heater.POST("/brightness", h.setBrightness)
		heater.POST("/buzzer", h.setBuzzer)
		heater.POST("/child-lock", h.setChildLock)
		heater.POST("/delay-off", h.setDelayOff)
		heater.POST("/params", h.setParams)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	api.GET("/logs", h.getLogs)
}
