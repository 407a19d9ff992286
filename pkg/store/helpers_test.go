package store

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssargent/stockroom/pkg/model"
)

type recordedOperation struct {
	store     string
	operation string
	err       error
}

// recordingObserver captures everything a store reports
type recordingObserver struct {
	mu         sync.Mutex
	operations []recordedOperation
	records    map[string]int
	snapshots  map[string]int64
	logins     []bool
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		records:   map[string]int{},
		snapshots: map[string]int64{},
	}
}

func (o *recordingObserver) ObserveOperation(store, operation string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.operations = append(o.operations, recordedOperation{store, operation, err})
}

func (o *recordingObserver) ObserveRecords(store string, count int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records[store] = count
}

func (o *recordingObserver) ObserveSnapshot(store string, bytes int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snapshots[store] = bytes
}

func (o *recordingObserver) ObserveLogin(success bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logins = append(o.logins, success)
}

func openProductStore(t *testing.T, path string) *ProductStore {
	t.Helper()
	s, err := NewProductStore(ProductStoreConfig{
		FilePath:          path,
		LowStockThreshold: model.DefaultLowStockThreshold,
	})
	require.NoError(t, err)
	_, err = s.Open()
	require.NoError(t, err)
	return s
}

func newTestCredentialStore(t *testing.T, path string) *CredentialStore {
	t.Helper()
	s, err := NewCredentialStore(CredentialStoreConfig{
		FilePath: path,
		Hasher:   NewBcryptHasher(bcrypt.MinCost),
	})
	require.NoError(t, err)
	return s
}

func mustProduct(t *testing.T, name, id string, quantity int, price float64) model.Product {
	t.Helper()
	p, err := model.NewProduct(name, id, quantity, price)
	require.NoError(t, err)
	return p
}

func tempStorePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
