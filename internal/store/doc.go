// Package store persists procurements in a single bbolt file.
//
// Records live in one bucket keyed by big-endian procurement id and are
// encoded with deterministic CBOR. Every mutation runs inside a bbolt write
// transaction, so a failed update leaves the stored record unchanged and
// id allocation cannot race with concurrent inserts.
//
// Example usage:
//
//	s, err := store.Open("data/procurement/procurement.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	p, err := s.Create(func(id uint32) *procurement.Procurement {
//	    return procurement.New(id, sourceID, createdBy)
//	})
package store
