package store

import (
	"context" // Context for queries
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Name trimming

	"restaurant_system/internal/apperr" // Error kinds
	"restaurant_system/internal/domain" // User model
	"restaurant_system/internal/utils"  // Password hashing

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// CredentialStore owns the user credential rows
type CredentialStore struct {
	db *gorm.DB // Database handle
}

// NewCredentialStore creates a credential store on db
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// SeedConfig names the accounts created on startup
type SeedConfig struct {
	AdminUsername    string // Upserted on every boot
	AdminPassword    string
	EmployeeUsername string // Inserted only if absent
	EmployeePassword string
}

// FindByUsername looks a user up by exact username
func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error // Find user by username
	return s.found(&user, err)
}

// FindByUsernameCaseInsensitive looks a user up ignoring case; used as the admin login fallback
func (s *CredentialStore) FindByUsernameCaseInsensitive(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).Order("id").First(&user).Error
	return s.found(&user, err)
}

func (s *CredentialStore) found(user *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// Create inserts an employee account; fails with Conflict if the username is taken
func (s *CredentialStore) Create(ctx context.Context, username, password, name string) (*domain.User, error) {
	if _, err := s.FindByUsername(ctx, username); err == nil {
		return nil, apperr.Conflict("Username already exists.")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Employee" // Default display name
	}
	user := domain.User{Username: username, PasswordHash: hash, Role: domain.RoleEmployee, Name: name}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Username already exists.") // Lost a race with another signup
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// UpdateProfile replaces the editable profile fields of username
func (s *CredentialStore) UpdateProfile(ctx context.Context, username, name, email, avatarURL string) (*domain.User, error) {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).
		Updates(map[string]any{"name": name, "email": email, "avatar_url": avatarURL})
	if res.Error != nil {
		return nil, fmt.Errorf("update profile: %w", res.Error)
	}
	return s.FindByUsername(ctx, username)
}

// UpdatePassword stores a new password hash for username
func (s *CredentialStore) UpdatePassword(ctx context.Context, username, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found.") // No rows updated
	}
	return nil
}

// VerifyPassword checks password against user's stored secret.
// A plaintext secret carried over from an older database is replaced by a hash on success.
func (s *CredentialStore) VerifyPassword(ctx context.Context, user *domain.User, password string) bool {
	ok, needsRehash := utils.CheckPassword(user.PasswordHash, password)
	if ok && needsRehash {
		if err := s.UpdatePassword(ctx, user.Username, password); err != nil {
			logrus.WithFields(logrus.Fields{
				"username": user.Username,
				"error":    err.Error(),
			}).Warn("Failed to upgrade legacy password")
		} else {
			logrus.WithField("username", user.Username).Info("Upgraded legacy password to bcrypt")
		}
	}
	return ok
}

// List returns a page of users ordered by id, and the total count
func (s *CredentialStore) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil { // Count all users
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []domain.User
	if err := s.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Seed makes sure the configured accounts exist.
// The admin is upserted on every boot (password, role and name overwritten, email and avatar kept);
// the employee is inserted only if absent.
func (s *CredentialStore) Seed(ctx context.Context, cfg SeedConfig) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return errors.New("admin credentials are required for seeding")
	}
	adminHash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin domain.User
		err := tx.Where("username = ?", cfg.AdminUsername).First(&admin).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			admin = domain.User{Username: cfg.AdminUsername, PasswordHash: adminHash, Role: domain.RoleAdmin, Name: "Administrator"}
			return tx.Create(&admin).Error
		case err != nil:
			return err
		}
		return tx.Model(&admin).Updates(map[string]any{
			"password": adminHash,
			"role":     domain.RoleAdmin,
			"name":     "Administrator",
		}).Error
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if cfg.EmployeeUsername == "" || cfg.EmployeeUsername == cfg.AdminUsername {
		return nil
	}
	if _, err := s.FindByUsername(ctx, cfg.EmployeeUsername); err == nil {
		return nil
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	empHash, err := utils.HashPassword(cfg.EmployeePassword)
	if err != nil {
		return fmt.Errorf("hash employee password: %w", err)
	}
	employee := domain.User{Username: cfg.EmployeeUsername, PasswordHash: empHash, Role: domain.RoleEmployee, Name: "Employee"}
	if err := s.db.WithContext(ctx).Create(&employee).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("seed employee: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"admin":    cfg.AdminUsername,
		"employee": cfg.EmployeeUsername,
	}).Info("Default users seeded")
	return nil
}
