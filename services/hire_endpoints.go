package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type HireEndpoints struct {
	contracts *ContractService
}

func NewHireEndpoints(contracts *ContractService) *HireEndpoints {
	return &HireEndpoints{contracts: contracts}
}

func (e *HireEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/hires", func(r chi.Router) {
		r.Post("/", e.CreateHireHandler)
		r.Get("/", e.ListHiresHandler)
	})

	r.Get("/freelancers/{id}/availability", e.AvailabilityHandler)
}

func (e *HireEndpoints) CreateHireHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var input CreateHireInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	hire, err := e.contracts.CreateHire(r.Context(), caller, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"hire":    hire,
		"message": "Freelancer hired successfully",
	})

	slog.Info("Hire request handled", "hire_id", hire.ID, "associate_id", caller.ID)
}

func (e *HireEndpoints) ListHiresHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	hires, err := e.contracts.ListHires(r.Context(), caller, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hires": hires,
		"count": len(hires),
	})
}

func (e *HireEndpoints) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerFromContext(r); !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	freelancerID := chi.URLParam(r, "id")
	if freelancerID == "" {
		http.Error(w, "Freelancer ID is required", http.StatusBadRequest)
		return
	}

	availability, err := e.contracts.CheckAvailability(r.Context(), freelancerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, availability)
}
