package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"spendlog/internal/auth"
	apperrors "spendlog/internal/errors"
	"spendlog/internal/models"
	"spendlog/internal/store"
)

// userService handles user-related business logic.
type userService struct {
	db       *gorm.DB
	users    *store.Store[models.User]
	expenses *store.Store[models.Expense]
	hasher   *auth.PasswordHasher
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, hasher *auth.PasswordHasher) UserServicer {
	return &userService{
		db:       db,
		users:    store.New[models.User](db),
		expenses: store.New[models.Expense](db),
		hasher:   hasher,
	}
}

// Register creates a new user with a hashed password.
func (s *userService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is malformed")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at most 72 bytes")
	}

	count, err := s.users.Count(ctx, store.Filter{"email": email})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashed, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// AttemptLogin verifies credentials. Unknown emails and wrong passwords
// produce the same error.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindOne(ctx, store.Filter{"email": strings.ToLower(strings.TrimSpace(email))})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !s.hasher.Verify(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// UpdateMonthlyBudget sets the user's monthly spending goal.
func (s *userService) UpdateMonthlyBudget(ctx context.Context, id string, budget float64) (*models.User, error) {
	if budget < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthlyBudget must not be negative")
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user, map[string]interface{}{"monthly_budget": budget}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// DeleteAccount removes the user and every expense they own in one transaction.
func (s *userService) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return err
	}

	err := store.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.expenses.WithTx(tx).DeleteWhere(ctx, store.Filter{"user_id": id}); err != nil {
			return err
		}
		return s.users.WithTx(tx).DeleteByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
