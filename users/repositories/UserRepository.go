package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bursary-portal-backend/db/models"
	"bursary-portal-backend/gateway"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	GrantAdmin(ctx context.Context, userID uuid.UUID, role, createdBy string) (*models.AdminUser, error)
	RevokeAdmin(ctx context.Context, userID uuid.UUID) error
	ListAdmins(ctx context.Context) ([]models.AdminUser, error)
}

// Implementations
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser hashes user.Password and stores the account. A soft-deleted
// account with the same email is restored instead.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	hashedPassword, err := HashPassword(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Email = normalizeEmail(user.Email)

	db := r.db.WithContext(ctx)

	var existing models.User
	err = db.Unscoped().Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		if !existing.DeletedAt.Valid {
			return nil, gateway.ErrEmailTaken
		}
		existing.DeletedAt = gorm.DeletedAt{}
		existing.FullName = user.FullName
		existing.Password = hashedPassword
		existing.Phone = user.Phone
		existing.Active = true

		if err := db.Unscoped().Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to restore soft-deleted user: %w", err)
		}
		return &existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	user.ID = uuid.New()
	user.Password = hashedPassword
	user.Active = true

	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user in database: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, gateway.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

func (r *userRepository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin allow-list: %w", err)
	}
	return count > 0, nil
}

// GrantAdmin adds userID to the allow-list, or updates its role when it is
// already there.
func (r *userRepository) GrantAdmin(ctx context.Context, userID uuid.UUID, role, createdBy string) (*models.AdminUser, error) {
	if role == "" {
		role = models.DefaultAdminRole
	}
	db := r.db.WithContext(ctx)

	if _, err := r.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	var admin models.AdminUser
	err := db.Where("user_id = ?", userID).First(&admin).Error
	switch {
	case err == nil:
		if admin.Role != role {
			if err := db.Model(&admin).Update("role", role).Error; err != nil {
				return nil, fmt.Errorf("failed to update admin role: %w", err)
			}
		}
		return &admin, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = models.AdminUser{UserID: userID, Role: role, CreatedBy: createdBy}
		if err := db.Create(&admin).Error; err != nil {
			return nil, fmt.Errorf("failed to grant admin: %w", err)
		}
		return &admin, nil
	}
	return nil, fmt.Errorf("failed to check admin allow-list: %w", err)
}

func (r *userRepository) RevokeAdmin(ctx context.Context, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AdminUser{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.AdminUser, error) {
	var admins []models.AdminUser
	err := r.db.WithContext(ctx).Preload("User").Order("created_at ASC").Find(&admins).Error
	return admins, err
}
