package store

import (
	"encoding/json"
	"os"
	"sync"

	"shopbot/internal/domain"
	applog "shopbot/internal/log"
)

// Data is the persisted document: the whole catalog in one JSON file,
// rewritten on every mutation.
type Data struct {
	Products []domain.Product `json:"products"`
	Orders   []domain.Order   `json:"orders"`
}

// Store keeps the catalog in memory and mirrors it to a JSON file. All
// access goes through a single mutex; mutators persist before returning.
// A write failure is logged and the in-memory state stays authoritative.
type Store struct {
	mu   sync.Mutex
	path string
	data Data
}

// Open loads the document at path. A missing or corrupt file starts the
// store empty; corruption is logged, not propagated.
func Open(path string) *Store {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			applog.EventError("store.load", err, map[string]any{"path": path})
		}
		return s
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		applog.EventError("store.load.corrupt", err, map[string]any{"path": path})
		s.data = Data{}
		return s
	}
	applog.Event("store.load", map[string]any{"products": len(s.data.Products), "orders": len(s.data.Orders)})
	return s
}

// save is called with the lock held.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err == nil {
		err = os.WriteFile(s.path, raw, 0644)
	}
	if err != nil {
		applog.EventError("store.save", err, map[string]any{"path": s.path})
	}
	return err
}

// Flush persists the current state, for the final write on shutdown.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Products returns a snapshot of the catalog in display order. Entries
// are deep copies: readers iterate them outside the lock while orders
// mutate size quantities in place.
func (s *Store) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.data.Products))
	for i, p := range s.data.Products {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) ProductCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.Products)
}

// Product looks a product up by id.
func (s *Store) Product(id int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data.Products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Product{}, false
}

// AddProduct appends to the catalog and persists.
func (s *Store) AddProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Products = append(s.data.Products, p)
	s.save()
}

// UpdateProduct applies fn to the product with the given id and persists.
func (s *Store) UpdateProduct(id int64, fn func(*domain.Product)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Products {
		if s.data.Products[i].ID == id {
			fn(&s.data.Products[i])
			s.save()
			return true
		}
	}
	return false
}

// RemoveProduct deletes by catalog position and persists.
func (s *Store) RemoveProduct(i int) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.data.Products) {
		return domain.Product{}, false
	}
	p := s.data.Products[i]
	s.data.Products = append(s.data.Products[:i], s.data.Products[i+1:]...)
	s.save()
	return p, true
}

// MoveProduct relocates the product at i to position j, preserving the
// relative order of everything else, and persists.
func (s *Store) MoveProduct(i, j int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.data.Products)
	if i < 0 || i >= n || j < 0 || j >= n {
		return false
	}
	p := s.data.Products[i]
	rest := append(s.data.Products[:i], s.data.Products[i+1:]...)
	s.data.Products = append(rest[:j], append([]domain.Product{p}, rest[j:]...)...)
	s.save()
	return true
}

// RecentOrders returns up to n orders, newest first.
func (s *Store) RecentOrders(n int) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.data.Orders)
	if n > total {
		n = total
	}
	out := make([]domain.Order, 0, n)
	for i := total - 1; i >= total-n; i-- {
		out = append(out, s.data.Orders[i].Clone())
	}
	return out
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.Orders)
}

// Transact runs fn under the store lock. The document is persisted only
// when fn returns nil; an error leaves memory and file untouched, which is
// how order intake keeps rejection atomic.
func (s *Store) Transact(fn func(d *Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.data); err != nil {
		return err
	}
	s.save()
	return nil
}

// FindProduct is a lookup helper for code already inside a Transact.
func (d *Data) FindProduct(id int64) *domain.Product {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return &d.Products[i]
		}
	}
	return nil
}
