// Package session ties the credential and product stores together behind a
// login gate.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ssargent/stockroom/pkg/config"
	"github.com/ssargent/stockroom/pkg/store"
)

// ErrNotLoggedIn is returned when inventory access is attempted without a login
var ErrNotLoggedIn = errors.New("not logged in")

// Session owns both stores for the lifetime of one program run. Inventory
// operations are reachable only while a user is logged in.
type Session struct {
	credentials *store.CredentialStore
	products    *store.ProductStore
	logger      *slog.Logger

	credentialsResult *store.OpenResult
	productsResult    *store.OpenResult
}

// Open creates both stores from cfg and loads their snapshots
func Open(cfg *config.Config, logger *slog.Logger, observer store.Observer) (*Session, error) {
	credentials, err := store.NewCredentialStore(store.CredentialStoreConfig{
		FilePath:          cfg.UsersPath(),
		MinPasswordLength: cfg.Security.MinPasswordLength,
		Hasher:            store.NewBcryptHasher(cfg.Security.BcryptCost),
		BootstrapUsername: cfg.Security.BootstrapUsername,
		BootstrapPassword: cfg.Security.BootstrapPassword,
		Logger:            logger,
		Observer:          observer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	products, err := store.NewProductStore(store.ProductStoreConfig{
		FilePath:          cfg.ProductsPath(),
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		Logger:            logger,
		Observer:          observer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product store: %w", err)
	}

	return New(credentials, products, logger)
}

// New opens already constructed stores. If the inventory cannot be loaded
// the credential store is closed again before the error is returned.
func New(credentials *store.CredentialStore, products *store.ProductStore, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	credentialsResult, err := credentials.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	productsResult, err := products.Open()
	if err != nil {
		err = fmt.Errorf("failed to load inventory: %w", err)
		if closeErr := credentials.Close(); closeErr != nil {
			logger.Error("failed to close credential store", "error", closeErr)
			return nil, errors.Join(err, closeErr)
		}
		return nil, err
	}

	return &Session{
		credentials:       credentials,
		products:          products,
		logger:            logger,
		credentialsResult: credentialsResult,
		productsResult:    productsResult,
	}, nil
}

// CredentialsResult describes the credential store load, including whether
// the bootstrap account was created
func (s *Session) CredentialsResult() *store.OpenResult {
	return s.credentialsResult
}

// ProductsResult describes the product store load
func (s *Session) ProductsResult() *store.OpenResult {
	return s.productsResult
}

// Register creates an account. It does not log the new user in.
func (s *Session) Register(username, password string) error {
	return s.credentials.Register(username, password)
}

// Login authenticates username and opens the inventory gate
func (s *Session) Login(username, password string) error {
	return s.credentials.Login(username, password)
}

// Logout closes the inventory gate
func (s *Session) Logout() {
	s.credentials.Logout()
}

// IsLoggedIn reports whether the inventory gate is open
func (s *Session) IsLoggedIn() bool {
	return s.credentials.IsLoggedIn()
}

// CurrentUser returns the logged in username, or ""
func (s *Session) CurrentUser() string {
	return s.credentials.CurrentUser()
}

// Inventory returns the product store while a user is logged in
func (s *Session) Inventory() (*store.ProductStore, error) {
	if !s.credentials.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}
	return s.products, nil
}

// Close logs out and writes a final snapshot of both stores
func (s *Session) Close() error {
	s.credentials.Logout()

	err := errors.Join(
		s.credentials.Close(),
		s.products.Close(),
	)
	if err != nil {
		s.logger.Error("final save failed", "error", err)
	}
	return err
}
