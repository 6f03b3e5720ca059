// Package memory implements the storage ports in process memory. It backs
// local runs without a database and the application tests.
//
// Writes made through a UnitOfWork after Begin are staged and applied
// atomically on Commit; reads inside the transaction see the committed data
// only. GetForUpdate holds a per-key lock until Commit or Rollback.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/core/domain/model/outbox"
	"waterline/internal/core/domain/model/rating"
	"waterline/internal/core/ports"
	"waterline/internal/pkg/keylock"
)

var ErrNoTransaction = errors.New("no active transaction")

type summaryRecord struct {
	overall    rating.Tally
	categories map[rating.Category]rating.Tally
	updatedAt  time.Time
}

type dataset struct {
	orders         map[kernel.UUID]order.State
	ratings        map[kernel.UUID]rating.State
	ratingsByOrder map[kernel.UUID]kernel.UUID
	summaries      map[kernel.UUID]summaryRecord
	outbox         []outbox.Message
}

func newDataset() *dataset {
	return &dataset{
		orders:         make(map[kernel.UUID]order.State),
		ratings:        make(map[kernel.UUID]rating.State),
		ratingsByOrder: make(map[kernel.UUID]kernel.UUID),
		summaries:      make(map[kernel.UUID]summaryRecord),
	}
}

// clone copies the indexes. Stored values are replaced, never mutated, so
// a shallow copy is enough.
func (d *dataset) clone() *dataset {
	return &dataset{
		orders:         maps.Clone(d.orders),
		ratings:        maps.Clone(d.ratings),
		ratingsByOrder: maps.Clone(d.ratingsByOrder),
		summaries:      maps.Clone(d.summaries),
		outbox:         slices.Clone(d.outbox),
	}
}

// write checks its preconditions before touching the dataset, so a failed
// write leaves it unchanged.
type write func(d *dataset) error

// Store holds every aggregate. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	data  *dataset
	locks *keylock.KeyLock
}

func NewStore() *Store {
	return &Store{data: newDataset(), locks: keylock.New()}
}

func (s *Store) read(fn func(d *dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) apply(writes []write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(writes) == 1 {
		return writes[0](s.data)
	}

	next := s.data.clone()
	for _, w := range writes {
		if err := w(next); err != nil {
			return err
		}
	}
	s.data = next
	return nil
}

type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type UnitOfWork struct {
	store   *Store
	active  bool
	staged  []write
	held    map[string]func()
	heldMux sync.Mutex
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	uow.active = true
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	defer uow.finish()

	if len(uow.staged) == 0 {
		return nil
	}
	return uow.store.apply(uow.staged)
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.finish()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: uow}
}

func (uow *UnitOfWork) RatingRepository() ports.RatingRepository {
	return &RatingRepository{uow: uow}
}

func (uow *UnitOfWork) FulfillerSummaryRepository() ports.FulfillerSummaryRepository {
	return &FulfillerSummaryRepository{uow: uow}
}

func (uow *UnitOfWork) OutboxRepository() ports.OutboxRepository {
	return &OutboxRepository{uow: uow}
}

func (uow *UnitOfWork) exec(w write) error {
	if uow.active {
		uow.staged = append(uow.staged, w)
		return nil
	}
	return uow.store.apply([]write{w})
}

// lock takes key for the rest of the transaction. Outside a transaction it
// does nothing.
func (uow *UnitOfWork) lock(key string) {
	if !uow.active {
		return
	}

	uow.heldMux.Lock()
	defer uow.heldMux.Unlock()
	if _, ok := uow.held[key]; ok {
		return
	}
	if uow.held == nil {
		uow.held = make(map[string]func())
	}
	uow.held[key] = uow.store.locks.Lock(key)
}

func (uow *UnitOfWork) finish() {
	uow.heldMux.Lock()
	for _, unlock := range uow.held {
		unlock()
	}
	uow.held = nil
	uow.heldMux.Unlock()

	uow.staged = nil
	uow.active = false
}

var (
	_ ports.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
	_ ports.UnitOfWork        = (*UnitOfWork)(nil)
)
