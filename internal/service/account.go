package service

import (
	"context"
	"net/mail"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/password"
	"storefront-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registration is the sign-up payload for one store
type Registration struct {
	LoginID         string `json:"user_id"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *Registration) normalize() {
	r.LoginID = strings.TrimSpace(r.LoginID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// validate checks the payload shape. It does not touch the store.
func (r *Registration) validate(op string) error {
	if _, ok := validName(r.LoginID); !ok {
		return invalid(op, "user_id is required")
	}
	if r.Email == "" || r.Password == "" {
		return invalid(op, "email and password are required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return invalid(op, "email is not a valid address")
	}
	if r.Password != r.ConfirmPassword {
		return apperr.New(apperr.EInvalid, op, apperr.ErrPasswordMismatch, "Password and confirmation do not match")
	}
	return nil
}

// AccountService manages principals inside a store
type AccountService struct {
	users  repository.UserRepository
	hasher password.Hasher
	tokens TokenCodec
}

// NewAccountService creates an account service
func NewAccountService(users repository.UserRepository, hasher password.Hasher, tokens TokenCodec) *AccountService {
	return &AccountService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a Customer in store and returns it with a fresh token
func (s *AccountService) Register(ctx context.Context, store *model.Store, reg Registration) (*model.User, string, error) {
	const op = "service.Register"

	reg.normalize()
	if err := reg.validate(op); err != nil {
		return nil, "", err
	}

	user, err := s.create(ctx, op, store, reg, model.RankCustomer)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(user.ID, store.ID)
	if err != nil {
		return nil, "", apperr.Internal(op, err)
	}

	prometheus.RecordStoreOperation("register")
	return user, token, nil
}

// create inserts a principal after the uniqueness checks. reg must already be validated.
func (s *AccountService) create(ctx context.Context, op string, store *model.Store, reg Registration, rank model.Rank) (*model.User, error) {
	log := logger.FromGoContext(ctx).With(zap.String("store_id", store.ID), zap.String("user_id", reg.LoginID))

	if _, err := s.users.FindUserByLoginID(ctx, store.ID, reg.LoginID); err == nil {
		log.Warn("Login id already registered in store")
		return nil, apperr.New(apperr.EConflict, op, apperr.ErrDuplicateLoginID, "user_id "+reg.LoginID+" is already taken")
	} else if !isNotFound(err) {
		return nil, apperr.Internal(op, err)
	}

	if _, err := s.users.FindUserByEmail(ctx, store.ID, reg.Email); err == nil {
		log.Warn("Email already registered in store")
		return nil, apperr.New(apperr.EConflict, op, apperr.ErrDuplicateEmail, "email "+reg.Email+" is already registered")
	} else if !isNotFound(err) {
		return nil, apperr.Internal(op, err)
	}

	hashed, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	user := &model.User{
		ID:       uuid.NewString(),
		StoreID:  store.ID,
		LoginID:  reg.LoginID,
		Email:    reg.Email,
		Password: hashed,
		Rank:     rank,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if isDuplicate(err) {
			// lost a race with a concurrent registration
			return nil, apperr.New(apperr.EConflict, op, apperr.ErrDuplicateLoginID, "user_id or email is already taken")
		}
		return nil, apperr.Internal(op, err)
	}

	log.Info("User registered", zap.Stringer("rank", rank))
	return user, nil
}

// Login checks a principal's password and issues a token bound to store
func (s *AccountService) Login(ctx context.Context, store *model.Store, loginID, plaintext string) (*model.User, string, error) {
	const op = "service.Login"

	loginID = strings.TrimSpace(loginID)
	if loginID == "" || plaintext == "" {
		return nil, "", invalid(op, "user_id and password are required")
	}

	rejected := func() error {
		prometheus.RecordAuthError("login_failure")
		logger.FromGoContext(ctx).Warn("Login rejected", zap.String("store_id", store.ID), zap.String("user_id", loginID))
		return apperr.New(apperr.EUnauthorized, op, apperr.ErrInvalidCredentials, "Invalid user_id or password")
	}

	user, err := s.users.FindUserByLoginID(ctx, store.ID, loginID)
	if isNotFound(err) {
		return nil, "", rejected()
	}
	if err != nil {
		return nil, "", apperr.Internal(op, err)
	}

	ok, err := s.hasher.Verify(plaintext, user.Password)
	if err != nil {
		return nil, "", apperr.Internal(op, err)
	}
	if !ok {
		return nil, "", rejected()
	}

	token, err := s.tokens.GenerateToken(user.ID, store.ID)
	if err != nil {
		return nil, "", apperr.Internal(op, err)
	}

	prometheus.RecordStoreOperation("login")
	return user, token, nil
}

// SetRank changes the rank of a principal in store
func (s *AccountService) SetRank(ctx context.Context, store *model.Store, userID string, rank model.Rank) (*model.User, error) {
	const op = "service.SetRank"

	if !rank.Valid() {
		return nil, invalid(op, "rank must be one of customer, vip, administrator")
	}

	updated, err := s.users.UpdateUserRank(ctx, store.ID, userID, rank)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if !updated {
		return nil, apperr.New(apperr.ENotFound, op, apperr.ErrUserNotFound, "User not found")
	}

	user, err := s.users.FindUserByID(ctx, store.ID, userID)
	if isNotFound(err) {
		return nil, apperr.New(apperr.ENotFound, op, apperr.ErrUserNotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}

	logger.FromGoContext(ctx).Info("User rank changed",
		zap.String("store_id", store.ID),
		zap.String("user_id", userID),
		zap.Stringer("rank", rank))
	return user, nil
}
