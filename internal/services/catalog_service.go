package services

import (
	"shopbot/internal/domain"
	"shopbot/internal/store"
)

// ProductView is a catalog entry as the storefront API sees it.
type ProductView struct {
	domain.Product
	Available bool `json:"available"`
}

type CatalogService struct {
	Store *store.Store
}

func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{Store: st}
}

// List returns the catalog in display order with the computed
// availability flag.
func (s *CatalogService) List() []ProductView {
	products := s.Store.Products()
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ProductView{Product: p, Available: p.Available()})
	}
	return out
}
