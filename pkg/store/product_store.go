package store

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ssargent/stockroom/pkg/bptree"
	"github.com/ssargent/stockroom/pkg/codec"
	"github.com/ssargent/stockroom/pkg/model"
)

const indexOrder = 32

// ProductStore holds products keyed by ID and rewrites its snapshot file
// after every mutation. Reads return copies, so a returned product never
// changes under the caller.
//
// Every mutation rewrites the whole file. That is fine for the small record
// sets a single user keeps; larger inventories would need batched writes or
// an append log.
type ProductStore struct {
	config   ProductStoreConfig
	file     *SnapshotFile
	index    *bptree.BPlusTree[string, model.Product]
	logger   *slog.Logger
	observer Observer
	mutex    sync.Mutex
	isOpen   bool
}

// NewProductStore creates a new product store instance
func NewProductStore(config ProductStoreConfig) (*ProductStore, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("%w: snapshot file path", model.ErrEmptyField)
	}
	if config.LowStockThreshold < 0 {
		return nil, fmt.Errorf("%w: low stock threshold %d", model.ErrInvalidValue, config.LowStockThreshold)
	}
	if config.Logger == nil {
		config.Logger = discardLogger()
	}
	if config.Observer == nil {
		config.Observer = nopObserver{}
	}

	return &ProductStore{
		config:   config,
		file:     NewSnapshotFile(config.FilePath),
		index:    bptree.NewBPlusTree[string, model.Product](indexOrder),
		logger:   config.Logger.With("store", ProductStoreName),
		observer: config.Observer,
	}, nil
}

// Open loads the snapshot. A missing file yields an empty store. A snapshot
// that cannot be decoded leaves the store empty and closed.
func (s *ProductStore) Open() (*OpenResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isOpen {
		return &OpenResult{RecordsLoaded: s.index.Len()}, nil
	}

	startTime := time.Now()
	products, size, missing, err := loadSnapshot(s.file, codec.ProductCodec{})
	if err != nil {
		return nil, err
	}

	// Build the index aside and swap it in only once every record checks out
	index := bptree.NewBPlusTree[string, model.Product](indexOrder)
	duplicates := 0
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %w", ErrCorruption, s.file.Path(), i, err)
		}
		if !index.Insert(p.ID, p) {
			duplicates++
			s.logger.Warn("duplicate product ID in snapshot, keeping the later record",
				"path", s.file.Path(), "id", p.ID, "record", i)
		}
	}
	s.index = index
	s.isOpen = true
	s.observer.ObserveRecords(ProductStoreName, s.index.Len())

	result := &OpenResult{
		RecordsLoaded:      s.index.Len(),
		DuplicatesReplaced: duplicates,
		FileSize:           size,
		FileMissing:        missing,
		LoadTime:           time.Since(startTime),
	}
	s.logger.Debug("snapshot loaded",
		"path", s.file.Path(),
		"records", result.RecordsLoaded,
		"bytes", result.FileSize,
		"missing", result.FileMissing)
	return result, nil
}

// Add inserts a new product
func (s *ProductStore) Add(p model.Product) (err error) {
	defer s.observe("add", time.Now(), &err)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}
	if _, exists := s.index.Search(p.ID); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.index.Insert(p.ID, p)
	if err := s.persist(); err != nil {
		s.index.Delete(p.ID)
		return err
	}
	return nil
}

// Update replaces the quantity and price of an existing product. Both values
// are checked before either is applied.
func (s *ProductStore) Update(id string, quantity int, price float64) (err error) {
	defer s.observe("update", time.Now(), &err)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}
	previous, exists := s.index.Search(id)
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	updated := previous
	if err := updated.SetQuantity(quantity); err != nil {
		return err
	}
	if err := updated.SetPrice(price); err != nil {
		return err
	}

	s.index.Insert(id, updated)
	if err := s.persist(); err != nil {
		s.index.Insert(id, previous)
		return err
	}
	return nil
}

// Delete removes a product
func (s *ProductStore) Delete(id string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}
	previous, exists := s.index.Delete(id)
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	if err := s.persist(); err != nil {
		s.index.Insert(id, previous)
		return err
	}
	return nil
}

// FindByID returns the product with exactly this ID
func (s *ProductStore) FindByID(id string) (model.Product, bool) {
	return s.index.Search(id)
}

// FindByName returns every product whose name contains substring, ignoring
// case, in ascending ID order
func (s *ProductStore) FindByName(substring string) []model.Product {
	needle := strings.ToLower(substring)
	return s.filter(func(p model.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
}

// LowStock returns every product with quantity at or below threshold, in
// ascending ID order
func (s *ProductStore) LowStock(threshold int) []model.Product {
	return s.filter(func(p model.Product) bool {
		return p.IsLowStock(threshold)
	})
}

// Threshold returns the configured default low stock threshold
func (s *ProductStore) Threshold() int {
	return s.config.LowStockThreshold
}

// List returns every product in ascending ID order
func (s *ProductStore) List() []model.Product {
	return s.index.Values()
}

// TotalValue returns the sum of quantity times price over all products
func (s *ProductStore) TotalValue() float64 {
	var total float64
	s.index.Ascend(func(_ string, p model.Product) bool {
		total += p.TotalValue()
		return true
	})
	return total
}

// Summary aggregates every product, counting low stock against threshold
func (s *ProductStore) Summary(threshold int) model.Summary {
	summary := model.Summary{Threshold: threshold}
	s.index.Ascend(func(_ string, p model.Product) bool {
		summary.Add(p)
		return true
	})
	return summary
}

// Len returns the number of stored products
func (s *ProductStore) Len() int {
	return s.index.Len()
}

// Save rewrites the snapshot from the current state
func (s *ProductStore) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return ErrNotOpen
	}
	return s.persist()
}

// Close writes a final snapshot and shuts the store. If the write fails the
// store stays open so Save or Close can be retried.
func (s *ProductStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isOpen {
		return nil
	}
	if err := s.persist(); err != nil {
		return err
	}
	s.isOpen = false
	return nil
}

func (s *ProductStore) filter(match func(model.Product) bool) []model.Product {
	results := []model.Product{}
	s.index.Ascend(func(_ string, p model.Product) bool {
		if match(p) {
			results = append(results, p)
		}
		return true
	})
	return results
}

// persist writes the snapshot. Must be called with s.mutex held.
func (s *ProductStore) persist() error {
	n, err := saveSnapshot(s.file, codec.ProductCodec{}, s.index.Values())
	if err != nil {
		s.logger.Error("snapshot write failed", "path", s.file.Path(), "error", err)
		return err
	}

	s.observer.ObserveSnapshot(ProductStoreName, n)
	s.observer.ObserveRecords(ProductStoreName, s.index.Len())
	s.logger.Debug("snapshot written", "path", s.file.Path(), "records", s.index.Len(), "bytes", n)
	return nil
}

func (s *ProductStore) observe(operation string, start time.Time, err *error) {
	s.observer.ObserveOperation(ProductStoreName, operation, *err, time.Since(start))
}
