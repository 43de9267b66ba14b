package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gardenzilla/procurement/internal/procurement"
)

// Persistence the service needs. Implemented by *store.Store.
type Store interface {
	Create(build func(id uint32) *procurement.Procurement) (*procurement.Procurement, error)
	Get(id uint32) (*procurement.Procurement, error)
	List() ([]*procurement.Procurement, error)
	Update(id uint32, fn func(*procurement.Procurement) error) (*procurement.Procurement, error)
	Remove(id uint32) error
}

// Procurement operations over a store.
type Service struct {
	store Store
}

// Creates a service backed by the given store.
func New(store Store) *Service {
	return &Service{store: store}
}

// Creates an empty procurement for a source.
func (s *Service) CreateNew(sourceID, createdBy uint32) (*procurement.Procurement, error) {
	p, err := s.store.Create(func(id uint32) *procurement.Procurement {
		return procurement.New(id, sourceID, createdBy)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("procurement created", "id", p.ID, "source", sourceID, "by", createdBy)
	return p, nil
}

// Returns one procurement.
func (s *Service) GetByID(id uint32) (*procurement.Procurement, error) {
	return s.store.Get(id)
}

// Returns summaries of all procurements.
func (s *Service) GetAll() ([]procurement.Info, error) {
	all, err := s.store.List()
	if err != nil {
		return nil, err
	}
	infos := make([]procurement.Info, 0, len(all))
	for _, p := range all {
		infos = append(infos, p.Info())
	}
	return infos, nil
}

// Sets the estimated delivery date from an RFC 3339 string. An empty string
// clears the date.
func (s *Service) SetDeliveryDate(id uint32, date string) (*procurement.Procurement, error) {
	parsed, err := parseOptionalTime(date)
	if err != nil {
		return nil, err
	}
	return s.store.Update(id, func(p *procurement.Procurement) error {
		p.SetDeliveryDate(parsed)
		return nil
	})
}

// Replaces the reference.
func (s *Service) SetReference(id uint32, reference string) (*procurement.Procurement, error) {
	return s.store.Update(id, func(p *procurement.Procurement) error {
		p.SetReference(reference)
		return nil
	})
}

// Adds a SKU line.
func (s *Service) AddSku(id, sku, piece, price uint32) (*procurement.Procurement, error) {
	return s.store.Update(id, func(p *procurement.Procurement) error {
		return p.AddSku(sku, piece, price)
	})
}

// Removes a SKU line.
func (s *Service) RemoveSku(id, sku uint32) (*procurement.Procurement, error) {
	return s.store.Update(id, func(p *procurement.Procurement) error {
		return p.RemoveSku(sku)
	})
}

// Changes the ordered amount of a SKU.
func (s *Service) SetSkuPiece(id, sku, piece uint32) (*procurement.Procurement, error) {
	return s.store.Update(id, func(p *procurement.Procurement) error {
		return p.SetSkuAmount(sku, piece)
	})
}

// Changes the expected net price of a SKU.
func (s *Service) SetSkuPrice(id, sku, price uint32) (*procurement.Procurement, error) {
	return s.store.Update(id, func(p *procurement.Procurement) error {
		return p.SetSkuPrice(sku, price)
	})
}

// Adds a UPL candidate. bestBefore is an optional RFC 3339 string.
func (s *Service) AddUpl(id uint32, uplID string, sku, piece uint32, bestBefore string) (*procurement.Procurement, error) {
	bb, err := parseOptionalTime(bestBefore)
	if err != nil {
		return nil, err
	}
	return s.store.Update(id, func(p *procurement.Procurement) error {
		return p.AddUpl(uplID, sku, piece, bb)
	})
}

// Replaces the SKU, piece and best-before date of a UPL candidate.
func (s *Service) UpdateUpl(id uint32, uplID string, sku, piece uint32, bestBefore string) (*procurement.Procurement, error) {
	bb, err := parseOptionalTime(bestBefore)
	if err != nil {
		return nil, err
	}
	return s.store.Update(id, func(p *procurement.Procurement) error {
		return p.UpdateUpl(uplID, sku, piece, bb)
	})
}

// Removes a UPL candidate.
func (s *Service) RemoveUpl(id uint32, uplID string) (*procurement.Procurement, error) {
	return s.store.Update(id, func(p *procurement.Procurement) error {
		return p.RemoveUpl(uplID)
	})
}

// Moves a procurement to the named status.
func (s *Service) SetStatus(id uint32, status string, by uint32) (*procurement.Procurement, error) {
	target, err := procurement.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Update(id, func(p *procurement.Procurement) error {
		return p.SetStatus(target)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("procurement status changed", "id", id, "status", target, "by", by)
	return p, nil
}

// Deletes a procurement.
func (s *Service) Remove(id uint32) error {
	if err := s.store.Remove(id); err != nil {
		return err
	}
	slog.Info("procurement removed", "id", id)
	return nil
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrBadRequest, value)
	}
	return &t, nil
}
