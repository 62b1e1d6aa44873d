package router

import (
	"database/sql"

	"billiard_pos_backend/internal/handlers"
	"billiard_pos_backend/internal/middleware"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/locks"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	tariffRepo := repositories.NewTariffRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)

	// One keyed mutex shared by the services, so session and shift
	// critical sections serialize per entity.
	keyMutex := locks.NewKeyMutex()
	clock := services.NewRealClock()

	// Initialize Services
	authService := services.NewAuthService(authRepo, db)
	tariffService := services.NewTariffService(tariffRepo, db)
	tableService := services.NewTableService(tableRepo, sessionRepo)
	memberService := services.NewMemberService(memberRepo)
	shiftService := services.NewShiftService(shiftRepo, db, keyMutex, clock)
	sessionService := services.NewSessionService(sessionRepo, tableRepo, tariffRepo, memberRepo, shiftService, db, keyMutex, clock)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	tariffHandler := handlers.NewTariffHandler(tariffService)
	tableHandler := handlers.NewTableHandler(tableService)
	memberHandler := handlers.NewMemberHandler(memberService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	shiftHandler := handlers.NewShiftHandler(shiftService)

	apiV1 := engine.Group("/api/v1")

	// Public authentication routes
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	// Authenticated routes
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupTariffRoutes(authenticated, tariffHandler)
		SetupTableRoutes(authenticated, tableHandler, sessionHandler)
		SetupMemberRoutes(authenticated, memberHandler)
		SetupSessionRoutes(authenticated, sessionHandler)
		SetupShiftRoutes(authenticated, shiftHandler)
	}
}
