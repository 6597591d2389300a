// Package memory implementa los puertos de persistencia en memoria (STORAGE_DRIVER=memory y tests).
// Las transacciones trabajan sobre una copia del estado que solo se publica si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
	"github.com/jhoicas/Cotizaciones-api/internal/application/recycle"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

var _ quote.TxRunner = (*Store)(nil)
var _ recycle.TxRunner = (*Store)(nil)

type state struct {
	inventory map[string]entity.InventoryItem
	quotes    map[string]entity.Quote
	items     map[string][]entity.QuoteItem // por quote_id, en orden de inserción
	audit     []entity.AuditLogEntry
	bin       map[string]entity.RecycleBinEntry
	users     map[string]entity.User
}

func newState() *state {
	return &state{
		inventory: make(map[string]entity.InventoryItem),
		quotes:    make(map[string]entity.Quote),
		items:     make(map[string][]entity.QuoteItem),
		bin:       make(map[string]entity.RecycleBinEntry),
		users:     make(map[string]entity.User),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	for k, v := range s.quotes {
		c.quotes[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.QuoteItem(nil), v...)
	}
	c.audit = append([]entity.AuditLogEntry(nil), s.audit...)
	for k, v := range s.bin {
		c.bin[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// access da a los repos el estado; Store bloquea en cada llamada, txAccess ya corre bajo el lock de la tx.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
	fault(op string) error
}

// Store base de datos en memoria. El valor cero no es usable; usar New.
type Store struct {
	mu    sync.RWMutex
	st    *state
	fmu   sync.Mutex
	fails map[string]error
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState(), fails: make(map[string]error)}
}

// FailOn hace que la operación op (p. ej. "quote_items.insert") devuelva err. err nil la limpia.
func (s *Store) FailOn(op string, err error) {
	s.fmu.Lock()
	defer s.fmu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

func (s *Store) fault(op string) error {
	s.fmu.Lock()
	defer s.fmu.Unlock()
	return s.fails[op]
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

type txAccess struct {
	store *Store
	st    *state
}

func (t *txAccess) read(fn func(st *state) error) error  { return fn(t.st) }
func (t *txAccess) write(fn func(st *state) error) error { return fn(t.st) }
func (t *txAccess) fault(op string) error                { return t.store.fault(op) }

// run serializa las transacciones: trabaja sobre una copia y la publica solo si fn no falla.
func (s *Store) run(ctx context.Context, fn func(tx access) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(&txAccess{store: s, st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// RunQuote implementa quote.TxRunner.
func (s *Store) RunQuote(ctx context.Context, fn func(
	quoteRepo repository.QuoteRepository,
	inventoryRepo repository.InventoryRepository,
	binRepo repository.RecycleBinRepository,
) error) error {
	return s.run(ctx, func(tx access) error {
		return fn(&QuoteRepo{db: tx}, &InventoryRepo{db: tx}, &RecycleBinRepo{db: tx})
	})
}

// RunArchive implementa recycle.TxRunner.
func (s *Store) RunArchive(ctx context.Context, fn func(
	binRepo repository.RecycleBinRepository,
	inventoryRepo repository.InventoryRepository,
	userRepo repository.UserRepository,
) error) error {
	return s.run(ctx, func(tx access) error {
		return fn(&RecycleBinRepo{db: tx}, &InventoryRepo{db: tx}, &UserRepo{db: tx})
	})
}

// Repos fuera de transacción.

func (s *Store) Inventory() *InventoryRepo   { return &InventoryRepo{db: s} }
func (s *Store) Quotes() *QuoteRepo          { return &QuoteRepo{db: s} }
func (s *Store) Audit() *AuditRepo           { return &AuditRepo{db: s} }
func (s *Store) RecycleBin() *RecycleBinRepo { return &RecycleBinRepo{db: s} }
func (s *Store) Users() *UserRepo            { return &UserRepo{db: s} }
