package procurement

import (
	"fmt"
	"slices"
	"time"
)

// A purchase from a single source.
type Procurement struct {
	ID                    uint32         `json:"id" cbor:"1,keyasint"`
	SourceID              uint32         `json:"source_id" cbor:"2,keyasint"`
	Reference             string         `json:"reference" cbor:"3,keyasint"`
	EstimatedDeliveryDate *time.Time     `json:"estimated_delivery_date,omitempty" cbor:"4,keyasint,omitempty"`
	Items                 []Item         `json:"items" cbor:"5,keyasint"`
	UplCandidates         []UplCandidate `json:"upl_candidates" cbor:"6,keyasint"`
	Status                Status         `json:"status" cbor:"7,keyasint"`
	CreatedAt             time.Time      `json:"created_at" cbor:"8,keyasint"`
	CreatedBy             uint32         `json:"created_by" cbor:"9,keyasint"`
}

// An ordered SKU line.
type Item struct {
	Sku              uint32 `json:"sku" cbor:"1,keyasint"`
	OrderedAmount    uint32 `json:"ordered_amount" cbor:"2,keyasint"`
	ExpectedNetPrice uint32 `json:"expected_net_price" cbor:"3,keyasint"`
}

// A labelled unit received against a SKU.
//
// Piece is zero for a simple unit and the pack size for a bulk unit.
type UplCandidate struct {
	UplID      string     `json:"upl_id" cbor:"1,keyasint"`
	Sku        uint32     `json:"sku" cbor:"2,keyasint"`
	Piece      uint32     `json:"upl_piece" cbor:"3,keyasint"`
	BestBefore *time.Time `json:"best_before,omitempty" cbor:"4,keyasint,omitempty"`
}

// Returns the number of units the candidate represents. Simple units count
// as one.
func (u UplCandidate) Count() uint32 {
	if u.Piece == 0 {
		return 1
	}
	return u.Piece
}

// Creates a procurement in the new status.
func New(id, sourceID, createdBy uint32) *Procurement {
	return &Procurement{
		ID:            id,
		SourceID:      sourceID,
		Items:         []Item{},
		UplCandidates: []UplCandidate{},
		Status:        StatusNew,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     createdBy,
	}
}

// Replaces the free-text reference.
func (p *Procurement) SetReference(reference string) {
	p.Reference = reference
}

// Sets or, with nil, clears the estimated delivery date.
func (p *Procurement) SetDeliveryDate(date *time.Time) {
	p.EstimatedDeliveryDate = utc(date)
}

// Adds a SKU line. Fails if the SKU is already ordered.
func (p *Procurement) AddSku(sku, amount, netPrice uint32) error {
	if p.item(sku) != nil {
		return fmt.Errorf("%w: %d", ErrSkuExists, sku)
	}
	p.Items = append(p.Items, Item{Sku: sku, OrderedAmount: amount, ExpectedNetPrice: netPrice})
	return nil
}

// Changes the ordered amount of a SKU.
func (p *Procurement) SetSkuAmount(sku, amount uint32) error {
	item := p.item(sku)
	if item == nil {
		return fmt.Errorf("%w: %d", ErrSkuNotFound, sku)
	}
	item.OrderedAmount = amount
	return nil
}

// Changes the expected net price of a SKU.
func (p *Procurement) SetSkuPrice(sku, netPrice uint32) error {
	item := p.item(sku)
	if item == nil {
		return fmt.Errorf("%w: %d", ErrSkuNotFound, sku)
	}
	item.ExpectedNetPrice = netPrice
	return nil
}

// Removes a SKU line.
func (p *Procurement) RemoveSku(sku uint32) error {
	i := slices.IndexFunc(p.Items, func(it Item) bool { return it.Sku == sku })
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrSkuNotFound, sku)
	}
	p.Items = slices.Delete(p.Items, i, i+1)
	return nil
}

// Adds a UPL candidate. The id must be unique within the procurement and
// pass the Luhn check.
func (p *Procurement) AddUpl(uplID string, sku, piece uint32, bestBefore *time.Time) error {
	if p.upl(uplID) != nil {
		return fmt.Errorf("%w: %s", ErrUplExists, uplID)
	}
	if !luhnValid(uplID) {
		return fmt.Errorf("%w: %s", ErrInvalidUpl, uplID)
	}
	p.UplCandidates = append(p.UplCandidates, UplCandidate{
		UplID:      uplID,
		Sku:        sku,
		Piece:      piece,
		BestBefore: utc(bestBefore),
	})
	return nil
}

// Replaces the SKU, piece and best-before date of a UPL candidate.
func (p *Procurement) UpdateUpl(uplID string, sku, piece uint32, bestBefore *time.Time) error {
	u := p.upl(uplID)
	if u == nil {
		return fmt.Errorf("%w: %s", ErrUplNotFound, uplID)
	}
	u.Sku = sku
	u.Piece = piece
	u.BestBefore = utc(bestBefore)
	return nil
}

// Removes a UPL candidate.
func (p *Procurement) RemoveUpl(uplID string) error {
	i := slices.IndexFunc(p.UplCandidates, func(u UplCandidate) bool { return u.UplID == uplID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUplNotFound, uplID)
	}
	p.UplCandidates = slices.Delete(p.UplCandidates, i, i+1)
	return nil
}

// Moves the procurement to the target status if the workflow allows it.
// The procurement is unchanged on error.
func (p *Procurement) SetStatus(target Status) error {
	var err error
	switch target {
	case StatusOrdered:
		err = p.checkOrdered()
	case StatusArrived:
		err = p.requireFrom(target, StatusOrdered)
	case StatusProcessing:
		err = p.requireFrom(target, StatusOrdered, StatusArrived)
	case StatusClosed:
		err = p.checkClosed()
	default:
		err = fmt.Errorf("%w: %s -> %s", ErrTransition, p.Status, target)
	}
	if err != nil {
		return err
	}
	p.Status = target
	return nil
}

// Ordering is allowed from any status, including a re-order after arrival.
func (p *Procurement) checkOrdered() error {
	if p.EstimatedDeliveryDate == nil {
		return ErrNoDeliveryDate
	}
	if len(p.Items) == 0 {
		return ErrEmpty
	}
	return nil
}

func (p *Procurement) requireFrom(target Status, allowed ...Status) error {
	if !slices.Contains(allowed, p.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, p.Status, target)
	}
	return nil
}

// Every SKU needs exactly its ordered amount of UPL candidates before the
// procurement can close.
func (p *Procurement) checkClosed() error {
	if err := p.requireFrom(StatusClosed, StatusProcessing); err != nil {
		return err
	}
	for _, item := range p.Items {
		have := 0
		for _, u := range p.UplCandidates {
			if u.Sku == item.Sku {
				have++
			}
		}
		if uint32(have) != item.OrderedAmount {
			return fmt.Errorf("%w: SKU %d has %d of %d", ErrMissingUpls, item.Sku, have, item.OrderedAmount)
		}
	}
	return nil
}

func (p *Procurement) item(sku uint32) *Item {
	for i := range p.Items {
		if p.Items[i].Sku == sku {
			return &p.Items[i]
		}
	}
	return nil
}

func (p *Procurement) upl(id string) *UplCandidate {
	for i := range p.UplCandidates {
		if p.UplCandidates[i].UplID == id {
			return &p.UplCandidates[i]
		}
	}
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
