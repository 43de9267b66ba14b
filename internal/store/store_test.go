package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gardenzilla/procurement/internal/procurement"
)

func open(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func create(t *testing.T, s *Store, source uint32) *procurement.Procurement {
	t.Helper()
	p, err := s.Create(func(id uint32) *procurement.Procurement {
		return procurement.New(id, source, 1)
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestCreateAllocatesIDs(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "procurement.db"))

	for want := uint32(1); want <= 3; want++ {
		if p := create(t, s, 5); p.ID != want {
			t.Fatalf("id = %d, want %d", p.ID, want)
		}
	}

	if err := s.Remove(2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if p := create(t, s, 5); p.ID != 4 {
		t.Fatalf("id after removing a middle record = %d, want 4", p.ID)
	}

	if err := s.Remove(4); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if p := create(t, s, 5); p.ID != 4 {
		t.Fatalf("id after removing the tail record = %d, want 4", p.ID)
	}
}

func TestGetMissing(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "procurement.db"))

	if _, err := s.Get(9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.Remove(9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(9, func(*procurement.Procurement) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "procurement.db"))
	p := create(t, s, 1)

	boom := errors.New("boom")
	_, err := s.Update(p.ID, func(p *procurement.Procurement) error {
		p.SetReference("changed")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := s.Get(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Reference != "" {
		t.Fatalf("reference = %q, want unchanged", got.Reference)
	}
}

func TestReopenPreservesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "procurement.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	p := create(t, s, 7)
	delivery := time.Date(2026, 12, 1, 8, 30, 15, 123456789, time.UTC)
	_, err = s.Update(p.ID, func(p *procurement.Procurement) error {
		p.SetReference("PO-2026-001")
		p.SetDeliveryDate(&delivery)
		if err := p.AddSku(100, 2, 1500); err != nil {
			return err
		}
		if err := p.AddUpl("79927398713", 100, 0, nil); err != nil {
			return err
		}
		return p.SetStatus(procurement.StatusOrdered)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	s.Close()

	s = open(t, path)
	got, err := s.Get(p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got.Reference != "PO-2026-001" || got.SourceID != 7 {
		t.Errorf("record = %+v", got)
	}
	if got.Status != procurement.StatusOrdered {
		t.Errorf("status = %v, want ordered", got.Status)
	}
	if got.EstimatedDeliveryDate == nil || !got.EstimatedDeliveryDate.Equal(delivery) {
		t.Errorf("delivery = %v, want %v", got.EstimatedDeliveryDate, delivery)
	}
	if len(got.Items) != 1 || got.Items[0].ExpectedNetPrice != 1500 {
		t.Errorf("items = %+v", got.Items)
	}
	if len(got.UplCandidates) != 1 || got.UplCandidates[0].UplID != "79927398713" {
		t.Errorf("upls = %+v", got.UplCandidates)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, p.CreatedAt)
	}

	next := create(t, s, 7)
	if next.ID != 2 {
		t.Errorf("id after reopen = %d, want 2", next.ID)
	}
}

func TestList(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "procurement.db"))

	if all, err := s.List(); err != nil || len(all) != 0 {
		t.Fatalf("List = %v, %v, want empty", all, err)
	}

	for i := 0; i < 3; i++ {
		create(t, s, uint32(i))
	}

	all, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, p := range all {
		if p.ID != uint32(i+1) {
			t.Errorf("all[%d].ID = %d, want %d", i, p.ID, i+1)
		}
	}
}
