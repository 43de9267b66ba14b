package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gardenzilla/procurement/internal/procurement"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir(), PIDFile: "-"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.store.Close() })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestServer(t)

	resp := do(t, s, http.MethodPost, "/api/v1/procurements", `{"source_id":4,"created_by":2}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created procurement.Procurement
	decode(t, resp, &created)
	if created.ID != 1 || created.SourceID != 4 {
		t.Fatalf("created = %+v", created)
	}

	resp = do(t, s, http.MethodGet, "/api/v1/procurements/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got procurement.Procurement
	decode(t, resp, &got)
	if got.Status != procurement.StatusNew || got.CreatedBy != 2 {
		t.Fatalf("got = %+v", got)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/v1/procurements", `{"source_id":1,"created_by":1}`)
	do(t, s, http.MethodPost, "/api/v1/procurements/1/skus", `{"sku":100,"piece":1,"price":10}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing procurement", http.MethodGet, "/api/v1/procurements/42", "", http.StatusNotFound},
		{"invalid id", http.MethodGet, "/api/v1/procurements/abc", "", http.StatusBadRequest},
		{"duplicate sku", http.MethodPost, "/api/v1/procurements/1/skus", `{"sku":100,"piece":1,"price":10}`, http.StatusConflict},
		{"invalid upl", http.MethodPost, "/api/v1/procurements/1/upls", `{"upl_id":"19","sku":100}`, http.StatusBadRequest},
		{"bad date", http.MethodPut, "/api/v1/procurements/1/delivery", `{"delivery_date":"tomorrow"}`, http.StatusBadRequest},
		{"unknown status", http.MethodPut, "/api/v1/procurements/1/status", `{"status":"lost"}`, http.StatusBadRequest},
		{"order without delivery", http.MethodPut, "/api/v1/procurements/1/status", `{"status":"ordered"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPut, "/api/v1/procurements/1/reference", `{`, http.StatusBadRequest},
		{"remove missing sku", http.MethodDelete, "/api/v1/procurements/1/skus/7", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, s, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var body map[string]string
			decode(t, resp, &body)
			if body["error"] == "" {
				t.Fatal("missing error message")
			}
		})
	}
}

func TestProcurementLifecycle(t *testing.T) {
	s := newTestServer(t)

	steps := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/procurements", `{"source_id":1,"created_by":1}`},
		{http.MethodPut, "/api/v1/procurements/1/reference", `{"reference":"PO-7"}`},
		{http.MethodPut, "/api/v1/procurements/1/delivery", `{"delivery_date":"2026-11-02T10:00:00Z"}`},
		{http.MethodPost, "/api/v1/procurements/1/skus", `{"sku":100,"piece":1,"price":500}`},
		{http.MethodPut, "/api/v1/procurements/1/skus/100/piece", `{"piece":2}`},
		{http.MethodPut, "/api/v1/procurements/1/skus/100/price", `{"price":550}`},
		{http.MethodPut, "/api/v1/procurements/1/status", `{"status":"ordered","created_by":1}`},
		{http.MethodPut, "/api/v1/procurements/1/status", `{"status":"arrived","created_by":1}`},
		{http.MethodPut, "/api/v1/procurements/1/status", `{"status":"processing","created_by":1}`},
		{http.MethodPost, "/api/v1/procurements/1/upls", `{"upl_id":"79927398713","sku":100}`},
		{http.MethodPost, "/api/v1/procurements/1/upls", `{"upl_id":"18","sku":100}`},
		{http.MethodPut, "/api/v1/procurements/1/upls/18", `{"sku":100,"best_before":"2027-03-01T00:00:00Z"}`},
		{http.MethodPut, "/api/v1/procurements/1/status", `{"status":"closed","created_by":1}`},
	}

	for i, step := range steps {
		resp := do(t, s, step.method, step.path, step.body)
		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			t.Fatalf("step %d (%s %s): status %d: %s", i+1, step.method, step.path, resp.StatusCode, body)
		}
		resp.Body.Close()
	}

	var infos []procurement.Info
	decode(t, do(t, s, http.MethodGet, "/api/v1/procurements", ""), &infos)
	if len(infos) != 1 || infos[0].Status != procurement.StatusClosed {
		t.Fatalf("infos = %+v", infos)
	}
	if infos[0].UplCount != 2 {
		t.Fatalf("upl count = %d, want 2", infos[0].UplCount)
	}

	resp := do(t, s, http.MethodDelete, "/api/v1/procurements/1", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestStatusCountsRequests(t *testing.T) {
	s := newTestServer(t)

	do(t, s, http.MethodGet, "/api/v1/procurements", "").Body.Close()
	do(t, s, http.MethodGet, "/api/v1/procurements/9", "").Body.Close()
	do(t, s, http.MethodGet, "/healthz", "").Body.Close()

	var status statusResult
	decode(t, do(t, s, http.MethodGet, "/status", ""), &status)
	if !status.Running || status.Requests != 2 {
		t.Fatalf("status = %+v, want running with 2 requests", status)
	}
	if status.Version == "" || status.Pid == 0 {
		t.Fatalf("status = %+v", status)
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(Config{Address: "127.0.0.1:0", DataDir: t.TempDir(), PIDFile: "-"})
	if err != nil {
		t.Fatal(err)
	}
	if addr := s.Addr(); addr != nil {
		t.Fatalf("Addr before Start = %v, want nil", addr)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get("http://" + s.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	s.Wait()
}
