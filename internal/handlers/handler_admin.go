package handlers

import (
	"net/http"
	"strconv"

	"github.com/democraciv/bank_backend/internal/core/domain"
	portssvc "github.com/democraciv/bank_backend/internal/core/ports/services"
	"github.com/democraciv/bank_backend/internal/dto"
	"github.com/democraciv/bank_backend/internal/middleware"
	"github.com/democraciv/bank_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// adminHandler handles the privileged integration endpoints used by the
// Discord bot and operators.
type adminHandler struct {
	accountService      portssvc.AccountSvcFacade
	userService         portssvc.UserSvcFacade
	equalizationService portssvc.EqualizationSvcFacade
	statsService        portssvc.StatsSvcFacade
	cfg                 *config.Config
}

// registerAdminRoutes registers the admin-only endpoints.
func registerAdminRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := &adminHandler{
		accountService:      services.Account,
		userService:         services.User,
		equalizationService: services.Equalization,
		statsService:        services.Stats,
		cfg:                 cfg,
	}

	admin := rg.Group("/admin", middleware.AdminRequired())
	{
		admin.GET("/equalization", h.previewEqualization)
		admin.POST("/equalization", h.applyEqualization)
		admin.GET("/thresholds", h.listThresholds)
		admin.POST("/thresholds", h.setThreshold)
		admin.GET("/statistics", h.statistics)
		admin.GET("/default-account", h.defaultAccount)
		admin.GET("/discord-users/:discordID", h.userByDiscordID)
		admin.GET("/discord-users/:discordID/accounts", h.accountsByDiscordID)
	}
}

// previewEqualization computes the equalization report without moving money.
func (h *adminHandler) previewEqualization(c *gin.Context) {
	h.runEqualization(c, true)
}

// applyEqualization performs the equalization transfers for real.
func (h *adminHandler) applyEqualization(c *gin.Context) {
	h.runEqualization(c, false)
}

func (h *adminHandler) runEqualization(c *gin.Context, dryRun bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.equalizationService.Run(c.Request.Context(), dryRun, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to run equalization")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *adminHandler) listThresholds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.accountService.ListThresholdAccounts(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to list threshold accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

func (h *adminHandler) setThreshold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SetThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.accountService.SetThreshold(c.Request.Context(), canonicalUUID(req.IBAN), req.NewValue); err != nil {
		respondWithError(c, logger, err, "Failed to set threshold")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *adminHandler) statistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	stats, err := h.statsService.Statistics(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to compute statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// defaultAccount resolves a holder's default account for a currency. The
// holder is an organization when organizationID is given, otherwise the user
// linked to discordID.
func (h *adminHandler) defaultAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currency := c.Query("currency")
	if currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency is required"})
		return
	}

	var holder domain.Holder
	if orgID := c.Query("organizationID"); orgID != "" {
		holder = domain.OrganizationHolder(orgID)
	} else {
		discordID, err := strconv.ParseInt(c.Query("discordID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "either organizationID or a numeric discordID is required"})
			return
		}
		user, err := h.userService.GetUserByDiscordID(c.Request.Context(), discordID)
		if err != nil {
			respondWithError(c, logger, err, "Failed to resolve user")
			return
		}
		holder = domain.IndividualHolder(user.UserID)
	}

	acc, err := h.accountService.GetDefaultAccount(c.Request.Context(), holder, currency)
	if err != nil {
		respondWithError(c, logger, err, "Failed to resolve default account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}

func (h *adminHandler) userByDiscordID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	discordID, err := strconv.ParseInt(c.Param("discordID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discordID must be numeric"})
		return
	}

	user, err := h.userService.GetUserByDiscordID(c.Request.Context(), discordID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to resolve user")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// accountsByDiscordID lists every account visible to the user linked to the
// given external identity.
func (h *adminHandler) accountsByDiscordID(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	discordID, err := strconv.ParseInt(c.Param("discordID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discordID must be numeric"})
		return
	}

	user, err := h.userService.GetUserByDiscordID(c.Request.Context(), discordID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to resolve user")
		return
	}

	accounts, err := h.accountService.ListAccountsForUser(c.Request.Context(), user.UserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}
