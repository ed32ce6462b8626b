package model

import "time"

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:254"`
	Password  string    `json:"-" gorm:"not null"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
