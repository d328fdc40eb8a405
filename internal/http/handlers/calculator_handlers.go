package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/krishisetu/krishisetu/internal/calculator"
	"github.com/krishisetu/krishisetu/internal/http/response"
)

type CalculatorHandler struct{}

func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{}
}

func (h *CalculatorHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/{name}", h.run)
	return r
}

func (h *CalculatorHandler) list(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{"calculators": calculator.Names()})
}

// run executes one calculator. Malformed numeric fields never 4xx: the
// field map falls back to per-formula defaults. Only an unknown name 404s.
func (h *CalculatorHandler) run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	calc, ok := calculator.Lookup(name)
	if !ok {
		response.NotFound(w, "unknown calculator: "+name)
		return
	}

	fields := calculator.Fields{}
	if r.Body != nil {
		// A bad body is treated as an empty field map, not an error.
		_ = json.NewDecoder(r.Body).Decode(&fields)
	}

	response.JSON(w, http.StatusOK, calc(fields))
}
