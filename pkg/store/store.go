// Package store keeps named datasets for the chart server.
//
// Backends:
//   - [FileStore]: one JSON file per dataset in a directory
//   - [MongoStore]: one document per dataset in a MongoDB collection
//   - [MemoryStore]: an in-process map, for tests and ephemeral servers
//
// Every backend returns an error with code [errors.ErrCodeDatasetNotFound]
// for unknown names and rejects names that fail
// [errors.ValidateDatasetName].
package store

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
)

// Store is a dataset repository keyed by dataset name.
type Store interface {
	// Get returns the dataset called name.
	Get(ctx context.Context, name string) (*dataset.Dataset, error)

	// Put stores d under d.Name, replacing any previous version.
	Put(ctx context.Context, d *dataset.Dataset) error

	// Delete removes name. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)

	Close() error
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeDatasetNotFound, "dataset %q not found", name)
}

// checkPut validates a dataset before it is stored.
func checkPut(d *dataset.Dataset) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}
	if err := errors.ValidateDatasetName(d.Name); err != nil {
		return err
	}
	return d.Validate()
}

func encode(d *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := dataset.WriteJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(name string, data []byte) (*dataset.Dataset, error) {
	d, err := dataset.Decode(bytes.NewReader(data), dataset.FormatJSON)
	if err != nil {
		return nil, err
	}
	d.Name = name
	return d, nil
}

// MemoryStore keeps datasets in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, name string) (*dataset.Dataset, error) {
	if err := errors.ValidateDatasetName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	raw, ok := s.data[name]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(name)
	}
	return decode(name, raw)
}

func (s *MemoryStore) Put(ctx context.Context, d *dataset.Dataset) error {
	if err := checkPut(d); err != nil {
		return err
	}
	raw, err := encode(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[d.Name] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	delete(s.data, name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.data))
	for n := range s.data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
