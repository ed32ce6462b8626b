package services

import (
	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/candid-app/candid_api/limiter"
	"github.com/candid-app/candid_api/shared"
)

// ClientGateService is the cheap in-process throttle that runs before any
// Redis round trip. Its counters are per-instance and vanish on restart;
// the persisted RateLimitService remains the enforcement point.
type ClientGateService struct {
	context.DefaultService

	limiter *limiter.Limiter
}

const CLIENT_GATE_SVC = "client_gate_svc"

func (svc ClientGateService) Id() string {
	return CLIENT_GATE_SVC
}

func (svc *ClientGateService) Configure(ctx *context.Context) error {
	svc.limiter = limiter.New()
	return svc.DefaultService.Configure(ctx)
}

func (svc *ClientGateService) Start() error {
	svc.limiter.Start()
	return nil
}

func (svc *ClientGateService) Shutdown() {
	svc.limiter.Stop()
}

func (svc *ClientGateService) Limiter() *limiter.Limiter {
	return svc.limiter
}

// Gate applies a predefined policy keyed by the authenticated user when
// one is present, falling back to the client IP.
func (svc *ClientGateService) Gate(policy limiter.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID := svc.callerID(c)

		limited, resetIn := svc.limiter.Check(policy, callerID)
		if limited {
			message := "Too many attempts. Please try again later."
			if wait := limiter.FormatResetTime(resetIn); wait != "" {
				message = "Please wait " + wait + " before trying again"
			}
			return shared.NewRateLimitError(message, resetIn)
		}

		return c.Next()
	}
}

// ResetFor clears a policy's counter, e.g. the login gate after a
// successful sign-in.
func (svc *ClientGateService) ResetFor(policy limiter.Policy, c *fiber.Ctx) {
	svc.limiter.Reset(policy.Key, svc.callerID(c))
}

func (svc *ClientGateService) callerID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return userID
	}
	return shared.ClientIP(c)
}
