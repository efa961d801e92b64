package models

import (
	"time"

	"smartspend/internal/uuid"

	"gorm.io/gorm"
)

// User represents an account holder. Users are never deleted by the system.
type User struct {
	UserID       string    `gorm:"column:user_id;type:varchar(32);primaryKey" json:"user_id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Username     string    `gorm:"column:username;size:30;not null" json:"username"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	Expenses     []Expense `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the table name to the published schema.
func (User) TableName() string { return "users" }

// BeforeCreate hook assigns a user identifier for new records
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewUserID()
	}
	return nil
}
