// Development seeder: creates a demo owner account with an active feedback
// request so the send page and inbox can be exercised locally.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/candid-app/candid_api/model"
	"github.com/candid-app/candid_api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		email    = flag.String("email", "demo@candid-app.io", "Demo owner email")
		password = flag.String("password", "candid-demo1", "Demo owner password")
		name     = flag.String("name", "Demo", "Display name for the feedback request")
	)
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.FeedbackRequest{}, &model.AnonymousMessage{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	userID, _ := uuid.NewV7()
	user := &model.User{
		ID:       userID.String(),
		Email:    *email,
		Password: string(hash),
	}
	if err := db.FirstOrCreate(user, model.User{Email: *email}).Error; err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}

	requestID, _ := uuid.NewV7()
	request := &model.FeedbackRequest{
		ID:         requestID.String(),
		UniqueSlug: services.GenerateSlug(*name),
		Name:       *name,
		IsActive:   true,
		UserID:     user.ID,
	}
	if err := db.Create(request).Error; err != nil {
		log.Fatalf("Failed to create feedback request: %v", err)
	}

	fmt.Printf("Seeded owner %s with feedback request slug %q\n", user.Email, request.UniqueSlug)
}
