package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/krishisetu/krishisetu/internal/http/handlers"
)

func newCalculatorServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handlers.NewCalculatorHandler().Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestCalculatorList(t *testing.T) {
	srv := newCalculatorServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)

	names, ok := body["calculators"].([]any)
	if !ok || len(names) != 10 {
		t.Fatalf("calculators = %v, want 10 names", body["calculators"])
	}
}

func TestCalculatorUnknownName(t *testing.T) {
	srv := newCalculatorServer(t)

	resp := postJSON(t, srv.URL+"/timeTravel", map[string]any{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCalculatorMalformedFieldsNever4xx(t *testing.T) {
	srv := newCalculatorServer(t)

	for _, body := range []map[string]any{
		{},
		{"principal": "not-a-number", "annual_rate": nil, "tenure_months": []int{1, 2}},
		{"principal": -50},
	} {
		resp := postJSON(t, srv.URL+"/emi", body)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("body %v: status = %d, want 200", body, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestCalculatorGarbageBodyStillAnswers(t *testing.T) {
	srv := newCalculatorServer(t)

	resp, err := http.Post(srv.URL+"/emi", "application/json", strings.NewReader("{{{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCalculatorEMIResponseShape(t *testing.T) {
	srv := newCalculatorServer(t)

	resp := postJSON(t, srv.URL+"/emi", map[string]any{
		"principal": 100000, "annual_rate": 10, "tenure_months": 12,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)

	metrics, ok := body["metrics"].(map[string]any)
	if !ok {
		t.Fatalf("metrics missing: %v", body)
	}
	if emi, _ := metrics["emi"].(float64); emi < 8791 || emi > 8793 {
		t.Errorf("emi = %v, want ~8792", metrics["emi"])
	}
	if _, ok := body["breakdown"]; !ok {
		t.Error("breakdown missing")
	}
	if _, ok := body["tips"]; !ok {
		t.Error("tips missing")
	}
}
