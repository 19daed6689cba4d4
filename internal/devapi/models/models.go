package models

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"index"                    json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsStaff      bool   `gorm:"default:false"            json:"is_staff"`
}

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Token     string    `gorm:"size:100;unique;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresIn int       `gorm:"default:3600"             json:"expires_in"`
}

func (t PasswordResetToken) Valid(now time.Time) bool {
	return now.Sub(t.CreatedAt) < time.Duration(t.ExpiresIn)*time.Second
}

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

type Reservation struct {
	ID        uint      `gorm:"primaryKey"                json:"id"`
	Name      string    `gorm:"size:100;not null"         json:"name"`
	Email     string    `json:"-"`
	Phone     *string   `gorm:"size:20"                   json:"-"`
	Date      string    `gorm:"size:10;index:idx_slot"    json:"date"`
	Time      string    `gorm:"size:8;index:idx_slot"     json:"time"`
	PartySize uint      `gorm:"not null"                  json:"party_size"`
	Status    string    `gorm:"size:10;not null;index"    json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	TypeOpen   = "open"
	TypeClosed = "closed"

	MomentFullDay = "full_day"
	MomentLunch   = "lunch"
	MomentDinner  = "dinner"
)

type ExceptionalSchedule struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	Type      string    `gorm:"size:10;not null;index"   json:"type"`
	StartDate string    `gorm:"size:10;not null;index"   json:"start_date"`
	EndDate   *string   `gorm:"size:10"                  json:"end_date"`
	Moment    string    `gorm:"size:10;not null"         json:"moment"`
	CreatedAt time.Time `json:"created_at"`
}
