package models

import (
	"time"
)

// User is a registered player. TradeCoins is the in-game virtual currency
// balance and never goes negative.
type User struct {
	ID               uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Email            string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash     string     `json:"-" gorm:"not null"`
	TradeCoins       int        `json:"trade_coins" gorm:"not null;default:0"`
	LastPredictionAt *time.Time `json:"last_prediction_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PublicUser is the wire shape sent to clients. Field names match what the
// frontend expects; the password hash is never included.
type PublicUser struct {
	ID             uint    `json:"id"`
	Email          string  `json:"email"`
	TradeCoins     int     `json:"tradeCoins"`
	LastPrediction *string `json:"lastPrediction"`
}

// Public converts a User to its client-facing shape.
func (u *User) Public() PublicUser {
	var last *string
	if u.LastPredictionAt != nil {
		s := u.LastPredictionAt.UTC().Format(time.RFC3339)
		last = &s
	}
	return PublicUser{
		ID:             u.ID,
		Email:          u.Email,
		TradeCoins:     u.TradeCoins,
		LastPrediction: last,
	}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type WithdrawRequest struct {
	Amount int `json:"amount"`
}

type PredictionRequest struct {
	CoinsEarned int `json:"coins_earned"`
}
