package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/candid-app/candid_api/dto"
	"github.com/candid-app/candid_api/limiter"
	"github.com/candid-app/candid_api/shared"
)

// RateLimitService is the authoritative, persisted rate limit. Counters
// live in Redis and are shared across all server instances, so the check
// holds regardless of what any client-side throttle claims.
type RateLimitService struct {
	appContext.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	counters counterStore
	redisSvc *RedisService
}

// RateLimitConfig represents rate limiting configuration
type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	Description  string
	IsActive     bool
}

// counterStore is the atomic increment-and-expire primitive the checks run
// against. Satisfied by RedisService; faked in tests.
type counterStore interface {
	IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Delete(ctx context.Context, keys ...string) error
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc *RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.counters = svc.redisSvc
	svc.initDefaultConfigs()
	return nil
}

// ==================== CONFIGURATION MANAGEMENT ====================

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		shared.ActionSendMessage: {
			EndpointType: shared.ActionSendMessage,
			MaxRequests:  5,
			WindowSize:   time.Minute,
			Description:  "Anonymous message submissions per IP",
			IsActive:     true,
		},
		shared.ActionCreateFeedbackRequest: {
			EndpointType: shared.ActionCreateFeedbackRequest,
			MaxRequests:  3,
			WindowSize:   time.Hour,
			Description:  "Feedback request creation rate limit",
			IsActive:     true,
		},
		shared.ActionLoginAttempt: {
			EndpointType: shared.ActionLoginAttempt,
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			Description:  "Login attempts rate limit",
			IsActive:     true,
		},
		shared.ActionRegister: {
			EndpointType: shared.ActionRegister,
			MaxRequests:  5,
			WindowSize:   15 * time.Minute,
			Description:  "Registration rate limit",
			IsActive:     true,
		},
		shared.ActionPasswordReset: {
			EndpointType: shared.ActionPasswordReset,
			MaxRequests:  3,
			WindowSize:   15 * time.Minute,
			Description:  "Password reset request rate limit",
			IsActive:     true,
		},
		shared.ActionAPIGeneral: {
			EndpointType: shared.ActionAPIGeneral,
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			Description:  "General API rate limit per IP",
			IsActive:     true,
		},
	}
}

func (svc *RateLimitService) getConfig(endpointType string) (*RateLimitConfig, bool) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	config, exists := svc.configs[endpointType]
	return config, exists
}

// ==================== CORE RATE LIMITING LOGIC ====================

// Check records one attempt for identifier against the endpoint's policy.
// The increment and the window expiry are a single atomic Redis operation,
// so two concurrent requests at the window boundary cannot both slip under
// the ceiling.
func (svc *RateLimitService) Check(ctx context.Context, identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	config, exists := svc.getConfig(endpointType)
	if !exists || !config.IsActive {
		// No policy means no throttle.
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}, nil
	}

	key := rateLimitKey(endpointType, identifier)

	count, err := svc.counters.IncrWithWindow(ctx, key, config.WindowSize)
	if err != nil {
		return false, nil, err
	}

	resetIn, ttlErr := svc.counters.TTL(ctx, key)
	if ttlErr != nil || resetIn < 0 {
		resetIn = config.WindowSize
	}
	resetTime := time.Now().Add(resetIn)

	if count > int64(config.MaxRequests) {
		RecordRateLimitHit(endpointType)
		return false, &dto.RateLimitInfo{
			Allowed:   false,
			Remaining: 0,
			ResetIn:   resetIn,
			ResetTime: &resetTime,
		}, nil
	}

	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - int(count),
		ResetIn:   resetIn,
		ResetTime: &resetTime,
	}, nil
}

// ResetIn reports the remaining window for identifier without recording an
// attempt.
func (svc *RateLimitService) ResetIn(ctx context.Context, identifier, endpointType string) time.Duration {
	ttl, err := svc.counters.TTL(ctx, rateLimitKey(endpointType, identifier))
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

func (svc *RateLimitService) ResetRateLimit(ctx context.Context, identifier, endpointType string) error {
	return svc.counters.Delete(ctx, rateLimitKey(endpointType, identifier))
}

func rateLimitKey(endpointType, identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpointType, identifier)
}

// ==================== MIDDLEWARE FUNCTIONS ====================

// RateLimit throttles an endpoint by client IP. The middleware fails open
// on checker errors so an unavailable Redis does not take down read
// traffic; write paths that must fail closed call Check directly.
func (svc *RateLimitService) RateLimit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := shared.ClientIP(c)

		allowed, info, err := svc.Check(c.UserContext(), identifier, endpointType)
		if err != nil {
			log.Printf("Rate limit check error for %s (%s): %v", endpointType, identifier, err)
			return c.Next()
		}

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			return svc.handleRateLimitExceeded(c, endpointType, info)
		}

		return c.Next()
	}
}

// IPRateLimit applies the general per-IP budget across the whole API.
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return svc.RateLimit(shared.ActionAPIGeneral)
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil {
		return
	}

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}

	if !info.Allowed && info.ResetIn > 0 {
		c.Set("Retry-After", strconv.Itoa(int(info.ResetIn.Seconds())))
	}
}

func (svc *RateLimitService) handleRateLimitExceeded(c *fiber.Ctx, endpointType string, info *dto.RateLimitInfo) error {
	return shared.NewRateLimitError(svc.getRateLimitMessage(endpointType), info.ResetIn)
}

func (svc *RateLimitService) getRateLimitMessage(endpointType string) string {
	messages := map[string]string{
		shared.ActionSendMessage:           "Too many messages sent. Please wait before sending another.",
		shared.ActionCreateFeedbackRequest: "Too many feedback links created. Please try again later.",
		shared.ActionLoginAttempt:          "Too many login attempts. Please try again later.",
		shared.ActionRegister:              "Too many registration attempts. Please try again later.",
		shared.ActionPasswordReset:         "Too many password reset requests. Please try again later.",
		shared.ActionAPIGeneral:            "Too many requests. Please slow down.",
	}

	if message, exists := messages[endpointType]; exists {
		return message
	}

	return "Too many requests. Please try again later."
}

// ==================== ADMIN FUNCTIONS ====================

func (svc *RateLimitService) GetRateLimitStats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc.mutex.RLock()
		configs := make(map[string]*RateLimitConfig, len(svc.configs))
		for k, v := range svc.configs {
			configs[k] = v
		}
		svc.mutex.RUnlock()

		return shared.ResponseOK(c, map[string]interface{}{
			"configs":         configs,
			"client_policies": limiter.Policies(),
			"timestamp":       time.Now(),
		})
	}
}

func (svc *RateLimitService) UpdateConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		endpointType := c.Params("endpointType")

		var req struct {
			MaxRequests int    `json:"max_requests"`
			WindowSize  string `json:"window_size"` // e.g., "15m", "1h"
			IsActive    *bool  `json:"is_active"`
		}

		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request body")
		}

		svc.mutex.Lock()
		config, exists := svc.configs[endpointType]
		if !exists {
			svc.mutex.Unlock()
			return shared.NewNotFoundError("Endpoint type not found")
		}

		if req.MaxRequests > 0 {
			config.MaxRequests = req.MaxRequests
		}

		if req.WindowSize != "" {
			if duration, err := time.ParseDuration(req.WindowSize); err == nil {
				config.WindowSize = duration
			}
		}

		if req.IsActive != nil {
			config.IsActive = *req.IsActive
		}

		svc.mutex.Unlock()

		return shared.ResponseOK(c, config)
	}
}
