package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/democraciv/bank_backend/internal/apperrors"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/middleware"
	"github.com/democraciv/bank_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, rateLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimiter *limiter.Limiter,
) {
	v1 := r.Group("/api/v1", middleware.RateLimit(rateLimiter))

	// Registration and currency listing need no token.
	registerPublicRoutes(v1, services)

	authed := v1.Group("", middleware.APITokenAuth(services.User))
	registerUserRoutes(authed, services.User)
	registerAccountRoutes(authed, services.Account, services.Transaction)
	registerTransactionRoutes(authed, services.Transaction)
	registerOrganizationRoutes(authed, services.Organization)
	registerAdminRoutes(authed, cfg, services)
}

// canonicalUUID rewrites a UUID-shaped identifier into the lowercase
// canonical form rows are stored under, so an uppercase UUID in a request
// still finds its record. Anything else passes through for the services to
// reject.
func canonicalUUID(s string) string {
	if id, err := uuid.Parse(s); err == nil {
		return id.String()
	}
	return s
}

// respondWithError translates service errors into HTTP responses. Validation
// failures keep their message so clients can show it verbatim; anything
// unexpected is logged and hidden behind a generic 500.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		// Conflicts are transient races, not malformed requests. A 409
		// tells the client a retry may succeed.
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &appErr):
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(appErr.Code, gin.H{"error": fallback})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
