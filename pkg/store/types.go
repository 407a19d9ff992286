package store

import (
	"io"
	"log/slog"
	"time"
)

// Store names used in logs and metrics
const (
	ProductStoreName    = "products"
	CredentialStoreName = "credentials"
)

// Default file names inside the data directory
const (
	DefaultProductsFile = "inventory.dat"
	DefaultUsersFile    = "users.dat"
)

// Default bootstrap account created when the credential store is empty.
// This is a development convenience and is always reported to the caller.
const (
	DefaultBootstrapUsername = "admin"
	DefaultBootstrapPassword = "admin123"
)

// DefaultMinPasswordLength is the minimum password length accepted at registration
const DefaultMinPasswordLength = 6

// ProductStoreConfig holds configuration for the product store
type ProductStoreConfig struct {
	FilePath          string       // Path to the snapshot file
	LowStockThreshold int          // Default threshold for LowStock reports
	Logger            *slog.Logger // Defaults to a discarding logger
	Observer          Observer     // Defaults to a no-op observer
}

// CredentialStoreConfig holds configuration for the credential store
type CredentialStoreConfig struct {
	FilePath          string         // Path to the snapshot file
	MinPasswordLength int            // Minimum password length at registration
	Hasher            PasswordHasher // Defaults to bcrypt at the default cost
	BootstrapUsername string         // Account created when the store is empty
	BootstrapPassword string
	Logger            *slog.Logger
	Observer          Observer
}

// OpenResult describes what happened while a store loaded its snapshot
type OpenResult struct {
	RecordsLoaded         int // Distinct keys held after loading
	DuplicatesReplaced    int // Records whose key appeared earlier in the file; the later one wins
	FileSize              int64
	FileMissing           bool // No snapshot existed; the store started empty
	DefaultAccountCreated bool // Credential store only
	DefaultUsername       string
	LoadTime              time.Duration
}

// Observer receives store activity. It lets metrics be collected without the
// store depending on a metrics backend.
type Observer interface {
	ObserveOperation(store, operation string, err error, elapsed time.Duration)
	ObserveRecords(store string, count int)
	ObserveSnapshot(store string, bytes int64)
	ObserveLogin(success bool)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, error, time.Duration) {}
func (nopObserver) ObserveRecords(string, int)                            {}
func (nopObserver) ObserveSnapshot(string, int64)                         {}
func (nopObserver) ObserveLogin(bool)                                     {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Errors
var (
	ErrNotOpen            = &StoreError{"store is not open"}
	ErrDuplicateID        = &StoreError{"product ID already exists"}
	ErrDuplicateUser      = &StoreError{"username already exists"}
	ErrNotFound           = &StoreError{"product not found"}
	ErrWeakPassword       = &StoreError{"password is too short"}
	ErrInvalidCredentials = &StoreError{"invalid username or password"}
	ErrCorruption         = &StoreError{"snapshot data corruption detected"}
	ErrPersist            = &StoreError{"snapshot file I/O failed"}
)

// StoreError represents an inventory or credential store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
