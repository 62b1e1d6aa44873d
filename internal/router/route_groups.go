package router

import (
	"billiard_pos_backend/internal/handlers"
	"billiard_pos_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes wires login and registration.
func SetupPublicAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
}

// SetupAuthenticatedAuthRoutes wires routes that need a valid token.
func SetupAuthenticatedAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	rg.GET("/me", h.Me)
}

// SetupTariffRoutes wires tariff management. Creation and deactivation are
// restricted to managers and admins.
func SetupTariffRoutes(rg *gin.RouterGroup, h *handlers.TariffHandler) {
	tariffs := rg.Group("/tariffs")
	{
		tariffs.GET("", h.GetTariffs)
		tariffs.GET("/:id", h.GetTariffByID)
		tariffs.POST("", middleware.RoleAuthMiddleware("admin", "manager"), h.CreateTariff)
		tariffs.DELETE("/:id", middleware.RoleAuthMiddleware("admin", "manager"), h.DeactivateTariff)
	}
}

// SetupTableRoutes wires the floor view and session start on a table.
func SetupTableRoutes(rg *gin.RouterGroup, th *handlers.TableHandler, sh *handlers.SessionHandler) {
	tables := rg.Group("/tables")
	{
		tables.GET("", th.GetTables)
		tables.GET("/:tableId", th.GetTableByID)
		tables.GET("/:tableId/sessions", th.GetTableHistory)
		tables.POST("/:tableId/sessions", sh.StartSession)
	}
}

// SetupMemberRoutes wires member lookups.
func SetupMemberRoutes(rg *gin.RouterGroup, h *handlers.MemberHandler) {
	rg.GET("/members/:id", h.GetMemberByID)
}

// SetupSessionRoutes wires the session lifecycle.
func SetupSessionRoutes(rg *gin.RouterGroup, h *handlers.SessionHandler) {
	sessions := rg.Group("/sessions")
	{
		sessions.GET("/:id", h.GetSession)
		sessions.GET("/:id/charge", h.GetSessionCharge)
		sessions.POST("/:id/pause", h.PauseSession)
		sessions.POST("/:id/resume", h.ResumeSession)
		sessions.POST("/:id/end", h.EndSession)
	}
}

// SetupShiftRoutes wires the cash-drawer shift lifecycle. Movements and close
// are manager actions.
func SetupShiftRoutes(rg *gin.RouterGroup, h *handlers.ShiftHandler) {
	shifts := rg.Group("/shifts")
	{
		shifts.POST("", h.OpenShift)
		shifts.GET("/:id", h.GetShift)
		shifts.GET("/:id/summary", h.GetShiftSummary)
		shifts.POST("/:id/movements", middleware.RoleAuthMiddleware("admin", "manager"), h.RecordMovement)
		shifts.POST("/:id/close", h.CloseShift)
	}
}
