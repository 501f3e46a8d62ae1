package services

import (
	"errors"
	"fmt"
	"time"

	"shopbot/internal/domain"
	"shopbot/internal/store"
)

type OrderLine struct {
	ProductID int64  `json:"id"`
	Title     string `json:"title"`
	Size      string `json:"size,omitempty"`
	Qty       int    `json:"qty"`
}

type OrderRequest struct {
	Name    string      `json:"name"`
	Contact string      `json:"contact"`
	Items   []OrderLine `json:"items"`
}

type OrderService struct {
	Store *store.Store

	// Now is overridable in tests; order ids derive from it.
	Now func() time.Time
}

func NewOrderService(st *store.Store) *OrderService {
	return &OrderService{Store: st, Now: time.Now}
}

// Place validates every line against current stock and commits the order.
// The first failing line rejects the whole request and nothing is
// decremented; on success all lines are decremented, the order appended
// and the document persisted in one critical section.
func (s *OrderService) Place(req OrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, errors.New("no items to order")
	}
	for _, line := range req.Items {
		if line.Qty < 1 {
			return domain.Order{}, fmt.Errorf("invalid quantity for %s", line.Title)
		}
	}

	now := s.Now()
	order := domain.Order{
		ID:      domain.NewID(now),
		Date:    now,
		Name:    req.Name,
		Contact: req.Contact,
	}

	err := s.Store.Transact(func(d *store.Data) error {
		// validate every line before touching any stock
		for _, line := range req.Items {
			p := d.FindProduct(line.ProductID)
			if p == nil {
				return fmt.Errorf("product %s is no longer available", line.Title)
			}
			if line.Size != "" || p.Sized() {
				v := p.Variant(line.Size)
				if v == nil {
					return fmt.Errorf("product %s has no size %s", p.Title, line.Size)
				}
				if v.Quantity < line.Qty {
					return fmt.Errorf("not enough stock for %s (size %s, %d left)", p.Title, line.Size, v.Quantity)
				}
			} else if p.Quantity < line.Qty {
				return fmt.Errorf("not enough stock for %s (%d left)", p.Title, p.Quantity)
			}
		}

		for _, line := range req.Items {
			p := d.FindProduct(line.ProductID)
			if p.Sized() {
				p.Variant(line.Size).Quantity -= line.Qty
			} else {
				p.Quantity -= line.Qty
			}
			order.Items = append(order.Items, domain.OrderItem{
				ProductID: p.ID,
				Title:     p.Title,
				Size:      line.Size,
				Qty:       line.Qty,
			})
		}

		d.Orders = append(d.Orders, order)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
