package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User model. Username and email are each globally unique; the
// password column always holds a bcrypt hash, never plaintext.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username   string    `gorm:"uniqueIndex;not null"`
	Email      string    `gorm:"uniqueIndex;not null"`
	FullName   string    `gorm:"not null"`
	Password   string    `gorm:"not null"`
	Role       string    `gorm:"type:varchar(50);not null;default:'user'"`
	ProfileImg string
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// PublicUser is the client-safe projection of a User. It never carries
// the password hash.
type PublicUser struct {
	ID         uuid.UUID `json:"_id"`
	FullName   string    `json:"fullName"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	ProfileImg string    `json:"profileImg"`
}

// Public returns the client-safe projection.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FullName:   u.FullName,
		Username:   u.Username,
		Email:      u.Email,
		ProfileImg: u.ProfileImg,
	}
}

// Migrate runs auto migration for all relational models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Order{}, &OrderItem{})
}
