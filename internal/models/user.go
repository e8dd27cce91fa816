package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeMember  UserType = "member"
	UserTypeTrainer UserType = "trainer"
	UserTypeAdmin   UserType = "admin"
)

type User struct {
	gorm.Model            // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Username     string   `json:"username" gorm:"column:username;unique;not null"`
	Email        string   `json:"email" gorm:"column:email;unique;not null"`
	Password     string   `json:"-" gorm:"-:migration"` // Temporary field for password handling
	PasswordHash string   `json:"-" gorm:"column:password_hash;not null"`
	PhoneNumber  string   `json:"phoneNumber" gorm:"column:phone_number"`
	UserType     UserType `json:"userType" gorm:"column:user_type;not null;default:'member'"`
	Department   string   `json:"department" gorm:"column:department"`
	// BadgeCode is printed on the gym card and scanned at the front desk
	BadgeCode  string `json:"badgeCode" gorm:"column:badge_code;uniqueIndex;not null"`
	IsVerified bool   `json:"isVerified" gorm:"column:is_verified;not null;default:false"`
	FCMToken   string `json:"-" gorm:"column:fcm_token"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
