package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/marketpulse/trade-coin/backend/internal/auth"
	"github.com/marketpulse/trade-coin/backend/internal/metrics"
	"github.com/marketpulse/trade-coin/backend/internal/models"
)

var (
	ErrMissingFields       = errors.New("email and password are required")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("invalid withdrawal amount")
	ErrInsufficientBalance = errors.New("invalid withdrawal amount")
)

// MinWithdrawal is the smallest coin amount a user may withdraw.
const MinWithdrawal = 100

// AccountService owns the users table: registration, credential checks, and
// the trade-coin balance mutations.
type AccountService struct {
	db     *gorm.DB
	hasher auth.PasswordHasher
}

func NewAccountService(db *gorm.DB, hasher auth.PasswordHasher) *AccountService {
	return &AccountService{db: db, hasher: hasher}
}

// Register creates a user with a zero balance. The email is stored
// trimmed and lowercased so lookups are case-insensitive.
func (s *AccountService) Register(email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.db.Create(user).Error; err != nil {
		// A concurrent registration can still hit the unique index.
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	metrics.RegistrationsTotal.Inc()
	log.Printf("Account: registered user %d (%s)", user.ID, user.Email)
	return user, nil
}

// Authenticate verifies credentials and returns the user. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginsTotal.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		metrics.LoginsTotal.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &user, nil
}

// Get returns a user by id.
func (s *AccountService) Get(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Withdraw removes amount coins from the user's balance. The balance check
// and decrement happen in a single conditional UPDATE inside a transaction,
// so two concurrent withdrawals cannot both pass the check against a stale
// balance.
func (s *AccountService) Withdraw(userID uint, amount int) (*models.User, error) {
	if amount < MinWithdrawal {
		return nil, ErrInvalidAmount
	}

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND trade_coins >= ?", userID, amount).
			Update("trade_coins", gorm.Expr("trade_coins - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Either the user is gone or the balance was too low.
			if err := tx.First(&user, userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return err
			}
			return ErrInsufficientBalance
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.WithdrawalsTotal.Inc()
	metrics.WithdrawnCoinsTotal.Add(float64(amount))
	log.Printf("Account: user %d withdrew %d coins (balance now %d)", userID, amount, user.TradeCoins)
	return &user, nil
}

// RecordPrediction credits a prediction reward and stamps the last prediction
// time. The amount is caller-supplied and may be zero or negative; the
// balance is clamped at zero to preserve the non-negative invariant.
func (s *AccountService) RecordPrediction(userID uint, coinsEarned int) (*models.User, error) {
	var user models.User
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"trade_coins":        gorm.Expr("MAX(trade_coins + ?, 0)", coinsEarned),
				"last_prediction_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.PredictionRewardsTotal.Inc()
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
