package entities

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email          string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:unique_users_email"`
	PasswordHash   string     `json:"-" gorm:"type:varchar(255);not null"`
	FullName       string     `json:"full_name" gorm:"type:varchar(255)"`
	AvatarURL      string     `json:"avatar_url" gorm:"type:varchar(500)"`
	EmailConfirmed bool       `json:"email_confirmed" gorm:"not null;default:false"`
	ResetToken     *string    `json:"-" gorm:"type:varchar(64);index:idx_users_reset_token"`
	ResetExpiresAt *time.Time `json:"-" gorm:"type:timestamptz"`
	CreatedAt      time.Time  `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string {
	return "users"
}
