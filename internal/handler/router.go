package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/course-mgmt-api/internal/middleware"
	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/service"
)

// Handlers bundles every HTTP handler mounted by the router.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Cohorts       *CohortHandler
	Classes       *ClassHandler
	Modules       *ModuleHandler
	Offerings     *OfferingHandler
	ActivityLogs  *ActivityLogHandler
	Grades        *GradeHandler
	Notifications *NotificationHandler
}

// RouterConfig carries the dependencies needed to mount routes.
type RouterConfig struct {
	Prefix      string
	EnableDocs  bool
	AuthService *service.AuthService
	Metrics     *service.MetricsService
}

// RegisterRoutes mounts the API route tree. Catalog reads are public;
// mutations require a manager, weekly reporting a facilitator or manager.
func RegisterRoutes(r *gin.Engine, h Handlers, cfg RouterConfig) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.Prefix)
	authed := middleware.JWT(cfg.AuthService)
	managerOnly := middleware.RequireRoles(models.RoleManager)
	staffOnly := middleware.RequireRoles(models.RoleFacilitator, models.RoleManager)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", authed, h.Auth.Me)
	}

	users := api.Group("/users", authed)
	{
		users.GET("", managerOnly, h.Users.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleManager), middleware.AllowSelf), h.Users.Get)
		users.PUT("/:id", middleware.RBAC(string(models.RoleManager), middleware.AllowSelf), h.Users.Update)
		users.DELETE("/:id", managerOnly, h.Users.Delete)
		users.PUT("/:id/class", managerOnly, h.Users.AssignClass)
	}

	cohorts := api.Group("/cohorts")
	{
		cohorts.GET("", h.Cohorts.List)
		cohorts.GET("/:id", authed, h.Cohorts.Get)
		cohorts.POST("", authed, managerOnly, h.Cohorts.Create)
		cohorts.PUT("/:id", authed, managerOnly, h.Cohorts.Update)
		cohorts.DELETE("/:id", authed, managerOnly, h.Cohorts.Delete)
	}

	classes := api.Group("/classes")
	{
		classes.GET("", h.Classes.List)
		classes.GET("/:id", authed, h.Classes.Get)
		classes.POST("", authed, managerOnly, h.Classes.Create)
		classes.PUT("/:id", authed, managerOnly, h.Classes.Update)
		classes.DELETE("/:id", authed, managerOnly, h.Classes.Delete)
	}

	modules := api.Group("/modules")
	{
		modules.GET("", h.Modules.List)
		modules.GET("/:id", authed, h.Modules.Get)
		modules.POST("", authed, managerOnly, h.Modules.Create)
		modules.PUT("/:id", authed, managerOnly, h.Modules.Update)
		modules.DELETE("/:id", authed, managerOnly, h.Modules.Delete)
	}

	offerings := api.Group("/course-offerings")
	{
		offerings.GET("", h.Offerings.List)
		offerings.GET("/:id", authed, h.Offerings.Get)
		offerings.POST("", authed, staffOnly, h.Offerings.Create)
		offerings.PUT("/:id", authed, staffOnly, h.Offerings.Update)
		offerings.DELETE("/:id", authed, managerOnly, h.Offerings.Delete)
	}

	logs := api.Group("/activity-logs", authed, staffOnly)
	{
		logs.GET("", h.ActivityLogs.List)
		logs.GET("/:id", h.ActivityLogs.Get)
		logs.POST("", h.ActivityLogs.Create)
		logs.PUT("/:id", h.ActivityLogs.Update)
		logs.DELETE("/:id", managerOnly, h.ActivityLogs.Delete)
	}

	grades := api.Group("/grades", authed)
	{
		grades.GET("", h.Grades.List)
		grades.GET("/:id", h.Grades.Get)
		grades.POST("", staffOnly, h.Grades.Create)
		grades.PUT("/:id", staffOnly, h.Grades.Update)
		grades.POST("/:id/publish", staffOnly, h.Grades.Publish)
		grades.DELETE("/:id", managerOnly, h.Grades.Delete)
	}

	notifications := api.Group("/notifications", authed)
	{
		notifications.GET("", h.Notifications.List)
		notifications.PUT("/:id/read", h.Notifications.MarkRead)
		notifications.POST("", managerOnly, h.Notifications.Enqueue)
	}
}
