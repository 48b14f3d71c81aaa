package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/application/billing/usecases"
	rosterAdapter "github.com/mentora-inc/mentora/internal/infrastructure/adapters/roster"
	"github.com/mentora-inc/mentora/internal/infrastructure/config"
	"github.com/mentora-inc/mentora/internal/infrastructure/repository"
	billingHandlers "github.com/mentora-inc/mentora/internal/interfaces/http/handlers/billing"
	"github.com/mentora-inc/mentora/internal/interfaces/http/middleware"
	"github.com/mentora-inc/mentora/internal/shared/clock"
	"github.com/mentora-inc/mentora/internal/shared/db"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type Router struct {
	engine              *gin.Engine
	allowedOrigins      []string
	planHandler         *billingHandlers.PlanHandler
	subscriptionHandler *billingHandlers.SubscriptionHandler
	quotaHandler        *billingHandlers.QuotaHandler
	selfHandler         *billingHandlers.SelfHandler
	adminToken          *middleware.AdminTokenMiddleware
	sweepUC             *usecases.SweepSubscriptionsUseCase
	logger              logger.Interface
}

// NewRouter wires repositories, use cases and handlers on top of the given
// database handle and plan catalog cache.
func NewRouter(gdb *gorm.DB, planCache usecases.PlanCatalogCache, cfg *config.Config, log logger.Interface) *Router {
	clk := clock.System{}
	txManager := db.NewTransactionManager(gdb)

	planRepo := repository.NewPlanRepository(gdb, log.Named("plan_repo"))
	subRepo := repository.NewSubscriptionRepository(gdb, log.Named("subscription_repo"))
	eventRepo := repository.NewSubscriptionEventRepository(gdb, log.Named("event_repo"))
	rosterSvc := rosterAdapter.NewGormRosterService(gdb, log.Named("roster"))

	upsertUC := usecases.NewUpsertSubscriptionUseCase(subRepo, planRepo, eventRepo, rosterSvc, txManager, clk, log)
	changePlanUC := usecases.NewChangePlanUseCase(subRepo, planRepo, eventRepo, rosterSvc, txManager, clk, log)
	cancelUC := usecases.NewCancelSubscriptionUseCase(subRepo, planRepo, eventRepo, txManager, clk, log)
	reactivateUC := usecases.NewReactivateSubscriptionUseCase(subRepo, planRepo, eventRepo, txManager, clk, log)
	renewUC := usecases.NewRenewSubscriptionUseCase(subRepo, planRepo, eventRepo, txManager, clk, log)
	setCancelUC := usecases.NewSetCancelAtPeriodEndUseCase(subRepo, planRepo, clk, log)
	getSubUC := usecases.NewGetSubscriptionUseCase(subRepo, planRepo, rosterSvc, clk, log)
	getTeacherSubUC := usecases.NewGetTeacherSubscriptionUseCase(subRepo, planRepo, rosterSvc, clk, log)
	listSubsUC := usecases.NewListSubscriptionsUseCase(subRepo, planRepo, clk, log)
	listEventsUC := usecases.NewListSubscriptionEventsUseCase(subRepo, eventRepo, log)
	checkQuotaUC := usecases.NewCheckQuotaUseCase(subRepo, rosterSvc, clk, log)
	sweepUC := usecases.NewSweepSubscriptionsUseCase(subRepo, eventRepo, txManager, clk, log)

	createPlanUC := usecases.NewCreatePlanUseCase(planRepo, planCache, clk, log)
	updatePlanUC := usecases.NewUpdatePlanUseCase(planRepo, planCache, clk, log)
	getPlanUC := usecases.NewGetPlanUseCase(planRepo, log)
	listPlansUC := usecases.NewListPlansUseCase(planRepo, planCache, log)
	activatePlanUC := usecases.NewActivatePlanUseCase(planRepo, planCache, clk, log)
	deactivatePlanUC := usecases.NewDeactivatePlanUseCase(planRepo, planCache, clk, log)

	return &Router{
		engine:         gin.New(),
		allowedOrigins: cfg.Server.AllowedOrigins,
		planHandler: billingHandlers.NewPlanHandler(
			createPlanUC, updatePlanUC, getPlanUC, listPlansUC, activatePlanUC, deactivatePlanUC, log),
		subscriptionHandler: billingHandlers.NewSubscriptionHandler(
			upsertUC, changePlanUC, cancelUC, reactivateUC, renewUC, setCancelUC,
			getSubUC, getTeacherSubUC, listSubsUC, listEventsUC, log),
		quotaHandler: billingHandlers.NewQuotaHandler(checkQuotaUC, log),
		selfHandler:  billingHandlers.NewSelfHandler(getTeacherSubUC, checkQuotaUC, log),
		adminToken:   middleware.NewAdminTokenMiddleware(cfg.Server.AdminToken, log),
		sweepUC:      sweepUC,
		logger:       log,
	}
}

// SweepUseCase exposes the sweep for the scheduler started alongside the
// server.
func (r *Router) SweepUseCase() *usecases.SweepSubscriptionsUseCase {
	return r.sweepUC
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(r.allowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public plan catalog for the pricing page.
	r.engine.GET("/plans", r.planHandler.GetPublicPlans)

	r.setupAdminRoutes()
	r.setupTeacherRoutes()
	r.setupInternalRoutes()
}

func (r *Router) setupAdminRoutes() {
	admin := r.engine.Group("/admin")
	admin.Use(r.adminToken.RequireAdminToken())
	{
		admin.POST("/plans", r.planHandler.CreatePlan)
		admin.GET("/plans", r.planHandler.ListPlans)
		admin.GET("/plans/:sid", r.planHandler.GetPlan)
		admin.PUT("/plans/:sid", r.planHandler.UpdatePlan)
		admin.PATCH("/plans/:sid/status", r.planHandler.UpdatePlanStatus)

		admin.GET("/subscriptions", r.subscriptionHandler.ListSubscriptions)
		admin.GET("/subscriptions/:sid", r.subscriptionHandler.GetSubscription)
		admin.PATCH("/subscriptions/:sid/plan", r.subscriptionHandler.ChangePlan)
		admin.POST("/subscriptions/:sid/cancel", r.subscriptionHandler.CancelSubscription)
		admin.POST("/subscriptions/:sid/reactivate", r.subscriptionHandler.ReactivateSubscription)
		admin.POST("/subscriptions/:sid/renew", r.subscriptionHandler.RenewSubscription)
		admin.PATCH("/subscriptions/:sid/cancel-at-period-end", r.subscriptionHandler.SetCancelAtPeriodEnd)
		admin.GET("/subscriptions/:sid/events", r.subscriptionHandler.ListSubscriptionEvents)

		admin.PUT("/teachers/:teacher_id/subscription", r.subscriptionHandler.AssignSubscription)
		admin.GET("/teachers/:teacher_id/subscription", r.subscriptionHandler.GetTeacherSubscription)
	}
}

func (r *Router) setupTeacherRoutes() {
	me := r.engine.Group("/me")
	me.Use(middleware.RequireTeacher())
	{
		me.GET("/subscription", r.selfHandler.GetMySubscription)
		me.GET("/quota", r.selfHandler.GetMyQuota)
	}
}

// setupInternalRoutes wires the service-to-service surface. The roster
// subsystem calls quota check on every student assignment attempt.
func (r *Router) setupInternalRoutes() {
	internal := r.engine.Group("/internal")
	internal.Use(r.adminToken.RequireAdminToken())
	{
		internal.POST("/quota/check", r.quotaHandler.CheckQuota)
	}
}
