package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/candid-app/candid_api/model"
	"github.com/candid-app/candid_api/shared"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "candid_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	err = ds.db.AutoMigrate(
		&model.User{},
		&model.FeedbackRequest{},
		&model.AnonymousMessage{},
	)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError("Not Found")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewBadRequestError(err, "Already exists")
	}
	return shared.NewInternalError(err)
}

func newID() string {
	id, _ := uuid.NewV7()
	return id.String()
}

// ==================== USER METHODS ====================

func (ds *PostgresService) CreateUser(user *model.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	return ds.db.Create(user).Error
}

func (ds *PostgresService) GetUserByEmail(email string) (*model.User, error) {
	var user model.User

	err := ds.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (ds *PostgresService) GetUserByID(id string) (*model.User, error) {
	var user model.User

	err := ds.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (ds *PostgresService) UpdateLastLogin(userID string, at time.Time) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_login": at,
		"updated_at": at,
	}).Error
}

// ==================== FEEDBACK REQUEST METHODS ====================

func (ds *PostgresService) CreateFeedbackRequest(request *model.FeedbackRequest) error {
	if request.ID == "" {
		request.ID = newID()
	}
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	return ds.db.Create(request).Error
}

func (ds *PostgresService) GetFeedbackRequestByID(id string) (*model.FeedbackRequest, error) {
	var request model.FeedbackRequest

	err := ds.db.Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &request, nil
}

func (ds *PostgresService) GetFeedbackRequestBySlug(slug string) (*model.FeedbackRequest, error) {
	var request model.FeedbackRequest

	err := ds.db.Where("unique_slug = ?", slug).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &request, nil
}

// GetActiveFeedbackRequestForUser encodes the "one active link at a time"
// product convention: the newest active request wins. Cardinality is not
// enforced at the schema level.
func (ds *PostgresService) GetActiveFeedbackRequestForUser(userID string) (*model.FeedbackRequest, error) {
	var request model.FeedbackRequest

	err := ds.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &request, nil
}

func (ds *PostgresService) DeactivateFeedbackRequest(id, userID string) error {
	result := ds.db.Model(&model.FeedbackRequest{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ==================== MESSAGE METHODS ====================

func (ds *PostgresService) CreateMessage(message *model.AnonymousMessage) error {
	if message.ID == "" {
		message.ID = newID()
	}
	message.CreatedAt = time.Now()

	return ds.db.Create(message).Error
}

func (ds *PostgresService) GetMessagesForRequest(requestID string) ([]model.AnonymousMessage, error) {
	var messages []model.AnonymousMessage

	err := ds.db.Where("feedback_request_id = ?", requestID).
		Order("created_at DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkMessagesRead flips is_read for the given ids, scoped to one request
// so an owner can never mark messages outside their own inbox.
func (ds *PostgresService) MarkMessagesRead(requestID string, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	return ds.db.Model(&model.AnonymousMessage{}).
		Where("feedback_request_id = ? AND id IN ?", requestID, messageIDs).
		Update("is_read", true).Error
}

func (ds *PostgresService) CountUnreadMessages(requestID string) (int64, error) {
	var count int64

	err := ds.db.Model(&model.AnonymousMessage{}).
		Where("feedback_request_id = ? AND is_read = ?", requestID, false).
		Count(&count).Error

	return count, err
}
