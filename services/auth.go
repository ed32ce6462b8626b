package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/candid-app/candid_api/dto"
	"github.com/candid-app/candid_api/model"
	"github.com/candid-app/candid_api/shared"
)

type AuthService struct {
	context.DefaultService

	sqlSvc *PostgresService
	jwtSvc *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := svc.sqlSvc.GetUserByEmail(email)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}
	if existing != nil {
		return nil, shared.NewBadRequestError(fmt.Errorf("email taken"), "Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	user := &model.User{
		Email:    email,
		Password: string(hash),
	}
	if err := svc.sqlSvc.CreateUser(user); err != nil {
		return nil, shared.NewInternalError(err)
	}

	log.WithField("user_id", user.ID).Info("user registered")

	return &dto.RegisterResponse{
		UserID: user.ID,
		Email:  user.Email,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest, clientIP string) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := svc.sqlSvc.GetUserByEmail(email)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}
	if user == nil {
		return nil, shared.NewUnauthorizedError(nil, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.WithFields(log.Fields{"user_id": user.ID, "ip": clientIP}).Warn("failed login attempt")
		return nil, shared.NewUnauthorizedError(err, "Invalid email or password")
	}

	if err := svc.sqlSvc.UpdateLastLogin(user.ID, time.Now()); err != nil {
		log.WithError(err).Warn("failed to update last login")
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	return &dto.LoginResponse{
		UserID:      user.ID,
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
	}, nil
}

// RequiredAuth guards owner-facing routes. The verified user id is stashed
// in locals under shared.UserID.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}
