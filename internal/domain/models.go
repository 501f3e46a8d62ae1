package domain

import "time"

// MaxPhotos caps the photo list per product.
const MaxPhotos = 10

type SizeVariant struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Product carries either flat stock (Quantity, Sizes empty) or per-size
// stock (Sizes non-empty, Quantity unused). Catalog order is the array index.
type Product struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"desc"`
	Price       float64       `json:"price"`
	Quantity    int           `json:"quantity,omitempty"`
	Sizes       []SizeVariant `json:"sizes,omitempty"`
	Photos      []string      `json:"photos"`
}

func (p *Product) Sized() bool { return len(p.Sizes) > 0 }

// Available reports whether any stock is left.
func (p *Product) Available() bool {
	if !p.Sized() {
		return p.Quantity > 0
	}
	for _, s := range p.Sizes {
		if s.Quantity > 0 {
			return true
		}
	}
	return false
}

// Clone returns a copy sharing no backing arrays with p, so snapshots
// handed out of the store cannot race with in-place stock mutations.
func (p Product) Clone() Product {
	out := p
	out.Sizes = append([]SizeVariant(nil), p.Sizes...)
	out.Photos = append([]string(nil), p.Photos...)
	return out
}

// Variant returns the size variant with the given label.
func (p *Product) Variant(size string) *SizeVariant {
	for i := range p.Sizes {
		if p.Sizes[i].Size == size {
			return &p.Sizes[i]
		}
	}
	return nil
}

type OrderItem struct {
	ProductID int64  `json:"id"`
	Title     string `json:"title"`
	Size      string `json:"size,omitempty"`
	Qty       int    `json:"qty"`
}

// Order is append-only: created with the stock decrement, never mutated.
type Order struct {
	ID      int64       `json:"id"`
	Date    time.Time   `json:"date"`
	Name    string      `json:"name"`
	Contact string      `json:"contact"`
	Items   []OrderItem `json:"items"`
}

// Clone returns a copy sharing no backing arrays with o.
func (o Order) Clone() Order {
	out := o
	out.Items = append([]OrderItem(nil), o.Items...)
	return out
}

// NewID derives identifiers from the creation instant.
func NewID(t time.Time) int64 { return t.UnixMilli() }
