package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/candid-app/candid_api/limiter"
	"github.com/candid-app/candid_api/services/handlers"
	"github.com/candid-app/candid_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc     *AuthService
	feedbackSvc *FeedbackService
	gateSvc     *ClientGateService
	rateSvc     *RateLimitService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.feedbackSvc = svc.Service(FEEDBACK_SVC).(*FeedbackService)
	svc.gateSvc = svc.Service(CLIENT_GATE_SVC).(*ClientGateService)
	svc.rateSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	svc.app = fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		ErrorHandler: shared.ErrorHandler,
		JSONEncoder:  shared.JSONMarshal,
		JSONDecoder:  shared.JSONUnmarshal,
	})

	svc.app.Use(recover.New())

	// The submission endpoint is called from anonymous pages on any
	// origin, so CORS stays permissive.
	svc.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	svc.app.Use(svc.rateSvc.IPRateLimit())

	authHandler := handlers.NewAuthHandler(svc.authSvc, svc.gateSvc)
	feedbackHandler := handlers.NewFeedbackHandler(svc.feedbackSvc)

	svc.app.Get("/ping", svc.ping)

	v1 := svc.app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// Auth
	v1.Post("/register",
		svc.rateSvc.RateLimit(shared.ActionRegister),
		authHandler.Register)
	v1.Post("/login",
		svc.gateSvc.Gate(limiter.LoginAttempt),
		svc.rateSvc.RateLimit(shared.ActionLoginAttempt),
		authHandler.Login)

	// Anonymous surface
	v1.Get("/feedback/:slug", feedbackHandler.GetBySlug)
	v1.Post("/messages",
		svc.gateSvc.Gate(limiter.SendMessage),
		feedbackHandler.SendMessage)

	// Owner surface
	authed := v1.Group("", svc.authSvc.RequiredAuth())
	authed.Post("/feedback-requests",
		svc.gateSvc.Gate(limiter.CreateFeedbackRequest),
		svc.rateSvc.RateLimit(shared.ActionCreateFeedbackRequest),
		feedbackHandler.CreateFeedbackRequest)
	authed.Delete("/feedback-requests/:id", feedbackHandler.DeactivateFeedbackRequest)
	authed.Get("/inbox", feedbackHandler.GetInbox)
	authed.Post("/inbox/read", feedbackHandler.MarkMessagesRead)

	// Admin rate-limit surface
	admin := v1.Group("/admin", svc.authSvc.RequiredAuth())
	admin.Get("/rate-limits", svc.rateSvc.GetRateLimitStats())
	admin.Put("/rate-limits/:endpointType", svc.rateSvc.UpdateConfig())

	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseOK(c, "pong")
}
