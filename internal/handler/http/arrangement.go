package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type ArrangementHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Preview(w http.ResponseWriter, r *http.Request)
	Transition(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetBatch(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListTeam(w http.ResponseWriter, r *http.Request)
}

type ArrangementHandlerImpl struct {
	arrangementService arrangement.ArrangementService
}

func NewArrangementHandler(arrangementService arrangement.ArrangementService) ArrangementHandler {
	return &ArrangementHandlerImpl{arrangementService: arrangementService}
}

// Submit implements ArrangementHandler.
func (h *ArrangementHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	var req arrangement.SubmitArrangementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Requester always comes from the token
	req.RequesterID = actor.EmployeeID

	result, err := h.arrangementService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Arrangement submitted successfully", result)
}

// Preview implements ArrangementHandler.
func (h *ArrangementHandlerImpl) Preview(w http.ResponseWriter, r *http.Request) {
	var req arrangement.RecurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Preview decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	preview, err := h.arrangementService.Preview(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, preview)
}

// Transition implements ArrangementHandler.
func (h *ArrangementHandlerImpl) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	var req arrangement.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Transition decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ArrangementID = chi.URLParam(r, "id")
	req.ActorID = actor.EmployeeID
	if !validator.IsValidUUID(req.ArrangementID) {
		response.HandleError(w, arrangement.ErrArrangementNotFound)
		return
	}

	result, err := h.arrangementService.Transition(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Arrangement updated successfully", result)
}

// Get implements ArrangementHandler.
func (h *ArrangementHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Arrangement ID is required", nil)
		return
	}
	if !validator.IsValidUUID(id) {
		response.HandleError(w, arrangement.ErrArrangementNotFound)
		return
	}

	result, err := h.arrangementService.Get(r.Context(), actor.EmployeeID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetBatch implements ArrangementHandler.
func (h *ArrangementHandlerImpl) GetBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	batchID := chi.URLParam(r, "batchID")
	if batchID == "" {
		response.BadRequest(w, "Batch ID is required", nil)
		return
	}
	if !validator.IsValidUUID(batchID) {
		response.HandleError(w, arrangement.ErrBatchNotFound)
		return
	}

	result, err := h.arrangementService.GetBatch(r.Context(), actor.EmployeeID, batchID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListMine implements ArrangementHandler.
func (h *ArrangementHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	filter := parseArrangementFilter(r)
	result, err := h.arrangementService.ListByRequester(r.Context(), actor.EmployeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// ListTeam implements ArrangementHandler.
func (h *ArrangementHandlerImpl) ListTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	filter := parseArrangementFilter(r)
	result, err := h.arrangementService.ListBySubordinates(r.Context(), actor.EmployeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}

// parseArrangementFilter reads start_date, end_date, status (comma separated
// or repeated), search, page and limit.
func parseArrangementFilter(r *http.Request) arrangement.ArrangementFilter {
	filter := arrangement.ArrangementFilter{
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Search:    queryString(r, "search"),
	}
	filter.Page, filter.Limit = queryPage(r)

	for _, raw := range r.URL.Query()["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, arrangement.Status(s))
			}
		}
	}
	return filter
}
