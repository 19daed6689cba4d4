package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrUserAlreadyExist = errors.New("user already exist")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) (*GormRepo, error) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.PasswordResetToken{},
		&models.Reservation{},
		&models.ExceptionalSchedule{},
	); err != nil {
		return nil, err
	}
	return &GormRepo{DB: db}, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
