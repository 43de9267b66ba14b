package procurement

import "time"

// Summary of a procurement for list views.
type Info struct {
	ID                    uint32     `json:"id"`
	SourceID              uint32     `json:"source_id"`
	SkuCount              uint32     `json:"sku_count"`
	SkuPieceCount         uint32     `json:"sku_piece_count"`
	UplCount              uint32     `json:"upl_count"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
	Status                Status     `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	CreatedBy             uint32     `json:"created_by"`
}

// Summarizes the procurement.
func (p *Procurement) Info() Info {
	info := Info{
		ID:                    p.ID,
		SourceID:              p.SourceID,
		SkuCount:              uint32(len(p.Items)),
		EstimatedDeliveryDate: p.EstimatedDeliveryDate,
		Status:                p.Status,
		CreatedAt:             p.CreatedAt,
		CreatedBy:             p.CreatedBy,
	}
	for _, item := range p.Items {
		info.SkuPieceCount += item.OrderedAmount
	}
	for _, u := range p.UplCandidates {
		info.UplCount += u.Count()
	}
	return info
}
