package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v72"

	"nutritrack/config"
	"nutritrack/internal/service"
	"nutritrack/pkg/logger"
)

// WebhookVerifier checks a Stripe signature and decodes the event.
type WebhookVerifier interface {
	VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc      *service.Service
	webhooks WebhookVerifier
	health   Pinger
	logger   *logger.Logger
}

// NewHandler wires the API to the service. webhooks may be nil when Stripe
// is not configured.
func NewHandler(svc *service.Service, webhooks WebhookVerifier, log *logger.Logger) *Handler {
	return &Handler{svc: svc, webhooks: webhooks, logger: log.Named("http")}
}

// WithHealthCheck makes /health answer 503 while p fails.
func (h *Handler) WithHealthCheck(p Pinger) *Handler {
	h.health = p
	return h
}

const healthTimeout = 2 * time.Second

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.Warnw("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Router(cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(h.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.healthz)
	r.POST("/webhook/stripe", h.stripeWebhook)

	api := r.Group("/api")
	api.POST("/register", h.register)
	api.POST("/login", h.login)

	authed := api.Group("")
	authed.Use(h.authRequired())
	{
		authed.POST("/logout", h.logout)
		authed.GET("/user", h.getUser)
		authed.PATCH("/user", h.updateUser)
		authed.PATCH("/user/goals", h.updateGoals)
		authed.POST("/user/goals/calculate", h.calculateGoals)

		authed.GET("/meal-types", h.listMealTypes)
		authed.GET("/meals", h.listMeals)
		authed.POST("/meals", h.createMeal)
		authed.DELETE("/meals/:id", h.deleteMeal)
		authed.POST("/meals/:id/foods", h.addMealFood)
		authed.DELETE("/meals/:id/foods/:foodId", h.deleteMealFood)

		authed.GET("/foods", h.listFoods)
		authed.POST("/foods", h.createFood)
		authed.GET("/foods/search", h.searchFoods)

		authed.GET("/nutrition/daily", h.dailyNutrition)
		authed.GET("/progress/hourly", h.hourlyProgress)
		authed.GET("/progress/weekly", h.weeklyProgress)
		authed.GET("/progress/monthly", h.monthlyProgress)

		authed.POST("/ai/chat", h.chat)
		authed.POST("/ai/analyze-meal", h.analyzeMeal)
		authed.POST("/ai/suggest-recipes", h.suggestRecipes)
		authed.POST("/ai/personalized-recommendations", h.recommendations)

		authed.GET("/recipes", h.listRecipes)
		authed.GET("/recipes/:id", h.getRecipe)
		authed.POST("/recipes", h.createRecipe)
		authed.DELETE("/recipes/:id", h.deleteRecipe)

		authed.GET("/user-plans", h.listPlans)
		authed.GET("/user-plans/active", h.activePlan)
		authed.POST("/user-plans", h.savePlan)
		authed.POST("/user-plans/:id/activate", h.activatePlan)
		authed.DELETE("/user-plans/:id", h.deletePlan)
		authed.GET("/user-plans/:id/progress", h.getProgress)
		authed.POST("/user-plans/:id/progress", h.updateProgress)
		authed.GET("/meal-plans", h.legacyMealPlans)

		authed.POST("/generate-meal-plan", h.generateMealPlan)
		authed.POST("/generate-workout-plan", h.generateWorkoutPlan)
		authed.POST("/export-plan-pdf", h.exportPlanPDF)

		authed.POST("/notifications/schedule-daily", h.scheduleDaily)
		authed.POST("/billing/checkout", h.checkout)
	}

	return r
}
