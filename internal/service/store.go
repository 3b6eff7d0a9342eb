package service

import (
	"context"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreCreated is the outcome of creating a store, with its first administrator when one was requested
type StoreCreated struct {
	Store *model.Store
	Admin *model.User
	Token string
}

// StoreService creates and deletes stores. Callers must have passed Gate.ValidateSecurityKey.
type StoreService struct {
	stores   repository.StoreRepository
	accounts *AccountService
	tokens   TokenCodec
}

// NewStoreService creates a store service
func NewStoreService(stores repository.StoreRepository, accounts *AccountService, tokens TokenCodec) *StoreService {
	return &StoreService{stores: stores, accounts: accounts, tokens: tokens}
}

// CreateStore inserts a store named name. When admin is set, that principal is
// registered as the store's first Administrator.
func (s *StoreService) CreateStore(ctx context.Context, name string, admin *Registration) (*StoreCreated, error) {
	const op = "service.CreateStore"

	name, ok := validName(name)
	if !ok {
		return nil, invalid(op, "store name is required")
	}
	if admin != nil {
		admin.normalize()
		if err := admin.validate(op); err != nil {
			return nil, err
		}
	}

	log := logger.FromGoContext(ctx).With(zap.String("store_name", name))

	duplicate := apperr.New(apperr.EConflict, op, apperr.ErrDuplicateStoreName, "Store "+name+" already exists")
	if _, err := s.stores.FindStoreByName(ctx, name); err == nil {
		log.Warn("Store already exists")
		return nil, duplicate
	} else if !isNotFound(err) {
		return nil, apperr.Internal(op, err)
	}

	store := &model.Store{ID: uuid.NewString(), Name: name}
	if err := s.stores.CreateStore(ctx, store); err != nil {
		if isDuplicate(err) {
			return nil, duplicate
		}
		return nil, apperr.Internal(op, err)
	}
	prometheus.RecordStoreOperation("create")
	log.Info("Store created", zap.String("store_id", store.ID))

	created := &StoreCreated{Store: store}
	if admin == nil {
		return created, nil
	}

	user, err := s.accounts.create(ctx, op, store, *admin, model.RankAdministrator)
	if err == nil {
		created.Admin = user
		created.Token, err = s.tokens.GenerateToken(user.ID, store.ID)
		if err != nil {
			err = apperr.Internal(op, err)
		}
	}
	if err != nil {
		// undo the store so a failed request leaves nothing behind
		if _, rollbackErr := s.stores.DeleteStore(ctx, name); rollbackErr != nil {
			log.Error("Failed to roll back store", zap.Error(rollbackErr))
		}
		return nil, err
	}

	return created, nil
}

// DeleteStore removes a store with everything it owns
func (s *StoreService) DeleteStore(ctx context.Context, name string) error {
	const op = "service.DeleteStore"

	deleted, err := s.stores.DeleteStore(ctx, name)
	if err != nil {
		return apperr.Internal(op, err)
	}
	if !deleted {
		return apperr.New(apperr.ENotFound, op, apperr.ErrUnknownTenant, "Store not found")
	}

	prometheus.RecordStoreOperation("delete")
	logger.FromGoContext(ctx).Info("Store deleted", zap.String("store_name", name))
	return nil
}
