package domain

import "time" // Timestamps

// Roles a staff account can hold
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey"`                   // Primary key
	Username     string    `gorm:"size:64;uniqueIndex;not null"` // Unique username
	PasswordHash string    `gorm:"column:password;not null"`     // bcrypt hash
	Role         string    `gorm:"size:16;not null"`             // Role: admin or employee
	Name         string    `gorm:"not null"`                     // Display name
	Email        string    `gorm:"not null;default:''"`          // Optional contact email
	AvatarURL    string    `gorm:"not null;default:''"`          // Optional avatar image url
	CreatedAt    time.Time                                       // Creation timestamp
	UpdatedAt    time.Time                                       // Last update timestamp
}

// TableName keeps the table name used by earlier deployments
func (User) TableName() string { return "auth_users" }

// PublicUser is a User without its password, safe to hand to clients and to cache in sessions
type PublicUser struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// Public strips the password from the user
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:  u.Username,
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

// IsValidRole reports whether role is one the system knows
func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
