/*
handlers.go - HTTP API handlers for the tax engine

ENDPOINTS:
  Tax:
    POST   /api/tax/calculate              Compute tax for an inline person
    GET    /api/tax/calculate/{personId}   Compute tax for a stored person (?regime=NEW)
    POST   /api/tax/compare                Compute under every regime, recommend one

  Regimes:
    GET    /api/regimes                    Slab tables and deductions

  People:
    GET    /api/people                     List people (local directory only)
    POST   /api/people                     Create person (local directory only)
    GET    /api/people/{id}                Get person
    DELETE /api/people/{id}                Delete person (local directory only)
    GET    /api/people/{id}/income         Monthly income

ARCHITECTURE:
  Handler holds the calculator and a people.Directory. The directory is
  either the local SQLite store or the remote people client; write endpoints
  answer 501 when the directory cannot store people.

ERROR HANDLING:
  Errors are returned as ErrorResponse JSON:
  - 400: invalid regime, malformed or invalid person
  - 404: person not found
  - 429: rate limited
  - 501: directory is read-only
  - 502: people service failed
  - 500: everything else, including unknown person variants

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/tax-engine/factory"
	"github.com/warp/tax-engine/logging"
	"github.com/warp/tax-engine/people"
	"github.com/warp/tax-engine/tax"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Calculator *tax.Calculator
	People     people.Directory
}

// NewHandler creates a new handler.
func NewHandler(calc *tax.Calculator, dir people.Directory) *Handler {
	return &Handler{Calculator: calc, People: dir}
}

// =============================================================================
// TAX HANDLERS
// =============================================================================

// CalculateTax computes tax for the person in the request body.
func (h *Handler) CalculateTax(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Person == nil {
		writeError(w, r, http.StatusBadRequest, "person is required", nil)
		return
	}
	regime, err := tax.ParseRegime(req.Regime)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid regime", err)
		return
	}
	person, err := factory.PersonFromJSON(*req.Person)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	result, err := h.Calculator.Compute(r.Context(), person, regime)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaxResultDTO(result))
}

// CalculateTaxForPerson resolves a person by id and computes their tax.
// The regime query parameter defaults to NEW.
func (h *Handler) CalculateTaxForPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(w, r, "personId")
	if !ok {
		return
	}
	regimeParam := r.URL.Query().Get("regime")
	if regimeParam == "" {
		regimeParam = string(tax.RegimeNew)
	}
	regime, err := tax.ParseRegime(regimeParam)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid regime", err)
		return
	}

	person, err := h.People.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}

	result, err := h.Calculator.Compute(r.Context(), person, regime)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaxResultDTO(result))
}

// CompareRegimes computes the person's tax under every regime.
func (h *Handler) CompareRegimes(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Person == nil {
		writeError(w, r, http.StatusBadRequest, "person is required", nil)
		return
	}
	person, err := factory.PersonFromJSON(*req.Person)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	cmp, err := h.Calculator.Compare(r.Context(), person)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComparisonDTO(cmp))
}

// ListRegimes returns every regime's rule table.
func (h *Handler) ListRegimes(w http.ResponseWriter, r *http.Request) {
	strategies := h.Calculator.Registry().List()
	dtos := make([]RegimeDTO, len(strategies))
	for i, s := range strategies {
		dtos[i] = toRegimeDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

// ListPeople returns all stored people.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	store, ok := h.People.(people.Store)
	if !ok {
		writeError(w, r, http.StatusNotImplemented, "Listing people is not supported by the remote directory", people.ErrReadOnly)
		return
	}
	all, err := store.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to list people", err)
		return
	}
	dtos := make([]factory.PersonJSON, len(all))
	for i, p := range all {
		dtos[i] = factory.PersonToJSON(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson stores a new person.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	store, ok := h.People.(people.Store)
	if !ok {
		writeError(w, r, http.StatusNotImplemented, "Creating people is not supported by the remote directory", people.ErrReadOnly)
		return
	}
	var pj factory.PersonJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	// Create always inserts; the directory assigns the id.
	pj.ID = 0
	person, err := factory.PersonFromJSON(pj)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	saved, err := store.Save(r.Context(), person)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).InfoContext(r.Context(), "person created",
		"person_id", saved.Identification().ID, "category", string(saved.Category()))
	writeJSON(w, http.StatusCreated, factory.PersonToJSON(saved))
}

// GetPerson returns a single person.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(w, r, "id")
	if !ok {
		return
	}
	person, err := h.People.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, factory.PersonToJSON(person))
}

// DeletePerson removes a stored person.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	store, ok := h.People.(people.Store)
	if !ok {
		writeError(w, r, http.StatusNotImplemented, "Deleting people is not supported by the remote directory", people.ErrReadOnly)
		return
	}
	id, ok := personID(w, r, "id")
	if !ok {
		return
	}
	if err := store.Delete(r.Context(), id); err != nil {
		if people.IsNotFound(err) {
			writeError(w, r, http.StatusNotFound, err.Error(), err)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "Failed to delete person", err)
		return
	}
	logging.FromContext(r.Context()).InfoContext(r.Context(), "person deleted", "person_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetMonthlyIncome returns a person's monthly income.
func (h *Handler) GetMonthlyIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := personID(w, r, "id")
	if !ok {
		return
	}
	person, err := h.People.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, r, err)
		return
	}
	monthly, err := tax.MonthlyIncome(person)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MonthlyIncomeDTO{PersonID: id, MonthlyIncome: money(monthly)})
}

// =============================================================================
// HELPERS
// =============================================================================

func personID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "Invalid person id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeEngineError maps engine errors: client input -> 400, else 500.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case tax.IsClientError(err):
		writeError(w, r, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, tax.ErrUnknownPersonVariant):
		writeError(w, r, http.StatusInternalServerError, "Person category is not supported by the tax engine", err)
	default:
		writeError(w, r, http.StatusInternalServerError, "Tax calculation failed", err)
	}
}

// writeLookupError maps directory errors: not found -> 404, else 502.
func writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if people.IsNotFound(err) {
		writeError(w, r, http.StatusNotFound, err.Error(), err)
		return
	}
	writeError(w, r, http.StatusBadGateway, "Person lookup failed", err)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	ctx := r.Context()
	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx).ErrorContext(ctx, message, "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{
		Message:       message,
		CorrelationID: logging.CorrelationID(ctx),
		Status:        status,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
