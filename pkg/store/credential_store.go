package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ssargent/stockroom/pkg/bptree"
	"github.com/ssargent/stockroom/pkg/codec"
	"github.com/ssargent/stockroom/pkg/model"
)

// CredentialStore maps usernames to password tokens and tracks which user,
// if any, is logged in. It persists with the same snapshot framing as
// ProductStore.
type CredentialStore struct {
	config      CredentialStoreConfig
	file        *SnapshotFile
	index       *bptree.BPlusTree[string, string]
	hasher      PasswordHasher
	logger      *slog.Logger
	observer    Observer
	currentUser string
	dummyToken  string
	mutex       sync.Mutex
	isOpen      bool
}

// NewCredentialStore creates a new credential store instance
func NewCredentialStore(config CredentialStoreConfig) (*CredentialStore, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("%w: snapshot file path", model.ErrEmptyField)
	}
	if config.MinPasswordLength <= 0 {
		config.MinPasswordLength = DefaultMinPasswordLength
	}
	if config.Hasher == nil {
		config.Hasher = NewBcryptHasher(0)
	}
	if config.BootstrapUsername == "" {
		config.BootstrapUsername = DefaultBootstrapUsername
	}
	if config.BootstrapPassword == "" {
		config.BootstrapPassword = DefaultBootstrapPassword
	}
	if config.Logger == nil {
		config.Logger = discardLogger()
	}
	if config.Observer == nil {
		config.Observer = nopObserver{}
	}

	return &CredentialStore{
		config:   config,
		file:     NewSnapshotFile(config.FilePath),
		index:    bptree.NewBPlusTree[string, string](indexOrder),
		hasher:   config.Hasher,
		logger:   config.Logger.With("store", CredentialStoreName),
		observer: config.Observer,
	}, nil
}

// Open loads the snapshot. When no account exists afterwards the bootstrap
// account is registered and reported in the result.
func (s *CredentialStore) Open() (*OpenResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isOpen {
		return &OpenResult{RecordsLoaded: s.index.Len()}, nil
	}

	startTime := time.Now()
	creds, size, missing, err := loadSnapshot(s.file, codec.CredentialCodec{})
	if err != nil {
		return nil, err
	}

	index := bptree.NewBPlusTree[string, string](indexOrder)
	duplicates := 0
	for i, c := range creds {
		if c.Username == "" || c.Token == "" {
			return nil, fmt.Errorf("%w: %s: record %d: %w", ErrCorruption, s.file.Path(), i, model.ErrEmptyField)
		}
		if !index.Insert(c.Username, c.Token) {
			duplicates++
			s.logger.Warn("duplicate username in snapshot, keeping the later record",
				"path", s.file.Path(), "username", c.Username, "record", i)
		}
	}

	// Login compares against this token for unknown users so both failure
	// paths cost one hash check.
	dummyToken, err := s.hasher.Hash(s.config.BootstrapPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	s.index = index
	s.dummyToken = dummyToken
	s.currentUser = ""
	s.isOpen = true

	result := &OpenResult{
		RecordsLoaded:      s.index.Len(),
		DuplicatesReplaced: duplicates,
		FileSize:           size,
		FileMissing:        missing,
	}

	if s.index.Len() == 0 {
		if err := s.register(s.config.BootstrapUsername, s.config.BootstrapPassword); err != nil {
			s.isOpen = false
			return nil, fmt.Errorf("failed to create default account: %w", err)
		}
		result.DefaultAccountCreated = true
		result.DefaultUsername = s.config.BootstrapUsername
		s.logger.Warn("no accounts found, created default account; change or replace it before real use",
			"username", s.config.BootstrapUsername)
	}

	s.observer.ObserveRecords(CredentialStoreName, s.index.Len())
	result.LoadTime = time.Since(startTime)
	s.logger.Debug("snapshot loaded",
		"path", s.file.Path(),
		"records", result.RecordsLoaded,
		"bytes", result.FileSize,
		"missing", result.FileMissing)
	return result, nil
}

// Register adds a new account
func (s *CredentialStore) Register(username, password string) (err error) {
	defer s.observe("register", time.Now(), &err)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}
	return s.register(username, password)
}

// register validates, hashes, inserts and persists. Must be called with s.mutex held.
func (s *CredentialStore) register(username, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username", model.ErrEmptyField)
	}
	if password == "" {
		return fmt.Errorf("%w: password", model.ErrEmptyField)
	}
	if _, exists := s.index.Search(username); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateUser, username)
	}
	if len(password) < s.config.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, s.config.MinPasswordLength)
	}

	token, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.index.Insert(username, token)
	if err := s.persist(); err != nil {
		s.index.Delete(username)
		return err
	}
	return nil
}

// Login checks the password and records username as the current user. Unknown
// users and wrong passwords fail with the same error.
func (s *CredentialStore) Login(username, password string) (err error) {
	defer s.observe("login", time.Now(), &err)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}

	token, exists := s.index.Search(username)
	if !exists {
		token = s.dummyToken
	}
	if !s.hasher.Verify(token, password) || !exists {
		s.observer.ObserveLogin(false)
		return ErrInvalidCredentials
	}

	s.currentUser = username
	s.observer.ObserveLogin(true)
	s.logger.Info("login succeeded", "username", username)
	return nil
}

// Logout clears the current user. Logging out twice is a no-op.
func (s *CredentialStore) Logout() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.currentUser != "" {
		s.logger.Info("logged out", "username", s.currentUser)
	}
	s.currentUser = ""
}

// IsLoggedIn reports whether a user is logged in
func (s *CredentialStore) IsLoggedIn() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.currentUser != ""
}

// CurrentUser returns the logged in username, or "" when logged out
func (s *CredentialStore) CurrentUser() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.currentUser
}

// Exists reports whether an account with this username exists
func (s *CredentialStore) Exists(username string) bool {
	_, exists := s.index.Search(username)
	return exists
}

// Len returns the number of accounts
func (s *CredentialStore) Len() int {
	return s.index.Len()
}

// Save rewrites the snapshot from the current state
func (s *CredentialStore) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}
	return s.persist()
}

// Close logs out, writes a final snapshot and shuts the store. If the write
// fails the store stays open so Save or Close can be retried.
func (s *CredentialStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil
	}
	s.currentUser = ""
	if err := s.persist(); err != nil {
		return err
	}
	s.isOpen = false
	return nil
}

// persist writes the snapshot. Must be called with s.mutex held.
func (s *CredentialStore) persist() error {
	creds := make([]model.Credential, 0, s.index.Len())
	s.index.Ascend(func(username, token string) bool {
		creds = append(creds, model.Credential{Username: username, Token: token})
		return true
	})

	n, err := saveSnapshot(s.file, codec.CredentialCodec{}, creds)
	if err != nil {
		s.logger.Error("snapshot write failed", "path", s.file.Path(), "error", err)
		return err
	}

	s.observer.ObserveSnapshot(CredentialStoreName, n)
	s.observer.ObserveRecords(CredentialStoreName, len(creds))
	s.logger.Debug("snapshot written", "path", s.file.Path(), "records", len(creds), "bytes", n)
	return nil
}

func (s *CredentialStore) observe(operation string, start time.Time, err *error) {
	s.observer.ObserveOperation(CredentialStoreName, operation, *err, time.Since(start))
}
