package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"realtime-service/internal/events"
	"realtime-service/internal/handler"
	"realtime-service/internal/metrics"
	"realtime-service/internal/middleware"
	"realtime-service/internal/presence"
	"realtime-service/internal/realtime"
	"realtime-service/internal/service"
)

// Config carries the dependencies the router wires together. The
// realtime components are built in main because the sweeper and jobs
// share them.
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Env            string
	BasePath       string
	AllowedOrigins []string
	InternalAPIKey string

	Validator     middleware.TokenValidator
	Hub           *realtime.Hub
	Realtime      *realtime.Router
	Tracker       *presence.Tracker
	Emitter       *events.Emitter
	Dispatcher    *service.Dispatcher
	Notifications *service.NotificationService
}

// Setup assembles the gin engine with all routes and middleware
func Setup(cfg Config) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	wsHandler := handler.NewWSHandler(cfg.Hub, cfg.Realtime, cfg.Validator, cfg.Logger)
	presenceHandler := handler.NewPresenceHandler(cfg.Tracker)
	notificationHandler := handler.NewNotificationHandler(cfg.Notifications, cfg.Logger)
	eventHandler := handler.NewEventHandler(cfg.Emitter, cfg.Dispatcher, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Hub)

	// Probes and metrics, no auth
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group(cfg.BasePath)
	{
		// The websocket carries its token as a query param and resolves
		// identity permissively; joins enforce authentication instead.
		api.GET("/ws", wsHandler.HandleWebSocket)

		authed := api.Group("")
		authed.Use(middleware.AuthWithValidator(cfg.Validator))
		authed.Use(middleware.RejectClientTenantID())
		{
			presenceGroup := authed.Group("/presence")
			{
				presenceGroup.GET("/online", presenceHandler.GetOnlineUsers)
				presenceGroup.GET("/users", presenceHandler.GetAllPresence)
				presenceGroup.GET("/status/:userId", presenceHandler.GetUserStatus)
				presenceGroup.POST("/status/batch", presenceHandler.GetBatchStatus)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", notificationHandler.GetNotifications)
				notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
				notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
				notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
				notifications.DELETE("/:id", notificationHandler.DeleteNotification)
				notifications.GET("/preferences", notificationHandler.GetPreferences)
				notifications.PUT("/preferences", notificationHandler.UpdatePreferences)
			}
		}

		internal := api.Group("/internal")
		internal.Use(middleware.InternalAuth(cfg.InternalAPIKey))
		{
			internal.POST("/events/:entity/:action", eventHandler.EmitEvent)
			internal.POST("/notifications/dispatch", eventHandler.DispatchNotification)
		}
	}

	return r
}
