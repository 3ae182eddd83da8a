package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gigbridge/backend/repository"
)

type InterviewEndpoints struct {
	interviews *InterviewService
}

func NewInterviewEndpoints(interviews *InterviewService) *InterviewEndpoints {
	return &InterviewEndpoints{interviews: interviews}
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", e.ScheduleHandler)
		r.Get("/", e.ListHandler)
		r.Post("/{id}/response", e.RespondHandler)
		r.Patch("/{id}/status", e.UpdateStatusHandler)
		r.Post("/{id}/feedback", e.SubmitFeedbackHandler)
	})
}

func (e *InterviewEndpoints) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var input ScheduleInterviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	interview, err := e.interviews.Schedule(r.Context(), caller, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"interview": interview,
		"message":   "Interview scheduled successfully",
	})

	slog.Info("Interview schedule handled", "interview_id", interview.ID, "associate_id", caller.ID)
}

func (e *InterviewEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	filter := repository.InterviewFilter{
		Status:    r.URL.Query().Get("status"),
		RequestID: r.URL.Query().Get("request_id"),
		Limit:     limit,
		Offset:    offset,
	}

	interviews, err := e.interviews.ListInterviews(r.Context(), caller, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interviews": interviews,
		"count":      len(interviews),
	})
}

func (e *InterviewEndpoints) RespondHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		http.Error(w, "Interview ID is required", http.StatusBadRequest)
		return
	}

	var input RespondInvitationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	invitation, err := e.interviews.RespondToInvitation(r.Context(), caller, interviewID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invitation": invitation,
		"message":    "Response recorded",
	})

	slog.Info("Invitation response handled", "interview_id", interviewID, "freelancer_id", caller.ID, "response", input.Response)
}

func (e *InterviewEndpoints) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		http.Error(w, "Interview ID is required", http.StatusBadRequest)
		return
	}

	var input UpdateStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	interview, err := e.interviews.UpdateStatus(r.Context(), caller, interviewID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interview": interview,
		"message":   "Interview status updated",
	})
}

func (e *InterviewEndpoints) SubmitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interviewID := chi.URLParam(r, "id")
	if interviewID == "" {
		http.Error(w, "Interview ID is required", http.StatusBadRequest)
		return
	}

	var input SubmitFeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	feedback, err := e.interviews.SubmitFeedback(r.Context(), caller, interviewID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"feedback": feedback,
		"message":  "Feedback submitted",
	})
}
