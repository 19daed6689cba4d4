package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/models"
)

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("username = ?", u.Username).FirstOrCreate(u)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrUserAlreadyExist
	}
	return nil
}

func (r *GormRepo) CreateResetToken(ctx context.Context, userID uint, token string, ttl time.Duration) error {
	return r.DB.WithContext(ctx).Create(&models.PasswordResetToken{
		UserID:    userID,
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
	}).Error
}

func (r *GormRepo) ResetToken(ctx context.Context, userID uint, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.DB.WithContext(ctx).Where("user_id = ? AND token = ?", userID, token).First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// ConsumeResetToken sets the new password hash and deletes the token in one
// transaction, so a token can be used only once.
func (r *GormRepo) ConsumeResetToken(ctx context.Context, tokenID, userID uint, passwordHash string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.PasswordResetToken{}, tokenID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
	})
}
