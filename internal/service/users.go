package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barakabank/bank-service/internal/middleware"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/barakabank/bank-service/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Profile is the client-facing view of a user and their account.
type Profile struct {
	UserID        int64           `json:"user_id"`
	Email         string          `json:"email"`
	FullName      string          `json:"full_name"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Active        bool            `json:"active"`
}

// Register creates a new client user with a hashed password and a fresh
// zero-balance account.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*models.User, error) {
	if email == "" {
		return nil, &models.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if fullName == "" {
		return nil, &models.ValidationError{Field: "full_name", Reason: "must not be empty"}
	}
	if len(password) < 4 {
		return nil, &models.ValidationError{Field: "password", Reason: "must be at least 4 characters"}
	}
	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil, &models.ValidationError{Field: "email", Reason: "already registered"}
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleClient,
		Active:       true,
	}

	// User and account are created in one atomic unit; a generated account
	// number can collide with an existing one, so retry with a fresh number.
	const maxNumberAttempts = 3
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := utils.GenerateAccountNumber("2210", 16)
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}
		account := &models.Account{
			AccountNumber: number,
			Balance:       decimal.Zero,
		}
		if err := s.store.CreateUserWithAccount(ctx, user, account); err != nil {
			if errors.Is(err, models.ErrDuplicateAccountNumber) {
				continue
			}
			return nil, err
		}
		s.log.Infof("User registered: %s", user.Email)
		return user, nil
	}
	return nil, fmt.Errorf("register %s: %w", email, models.ErrDuplicateAccountNumber)
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}
	if !user.Active {
		return "", fmt.Errorf("user is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	var accountID int64
	if account, err := s.store.AccountByOwner(ctx, user.ID); err == nil {
		accountID = account.ID
	} else if !errors.Is(err, models.ErrNotFound) {
		return "", err
	}

	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
		UserID:    user.ID,
		AccountID: accountID,
		Role:      user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// UserProfile returns the caller's profile together with their account.
func (s *Service) UserProfile(ctx context.Context, identity models.Identity) (*Profile, error) {
	user, err := s.store.UserByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Active:   user.Active,
	}
	account, err := s.store.AccountByOwner(ctx, user.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if account != nil {
		profile.AccountNumber = account.AccountNumber
		profile.Balance = account.Balance
	}
	return profile, nil
}

// AllUsers lists every user.
func (s *Service) AllUsers(ctx context.Context) ([]models.User, error) {
	return s.store.AllUsers(ctx)
}

// SetUserActive activates or deactivates a user.
func (s *Service) SetUserActive(ctx context.Context, userID int64, active bool) (*models.User, error) {
	if err := s.store.SetUserActive(ctx, userID, active); err != nil {
		return nil, err
	}
	s.log.Infof("User %d active flag set to %t", userID, active)
	return s.store.UserByID(ctx, userID)
}
