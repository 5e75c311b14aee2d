package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/delegation"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type DelegationHandler interface {
	Delegate(w http.ResponseWriter, r *http.Request)
	Respond(w http.ResponseWriter, r *http.Request)
	Undelegate(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListIncoming(w http.ResponseWriter, r *http.Request)
}

type DelegationHandlerImpl struct {
	delegationService delegation.DelegationService
}

func NewDelegationHandler(delegationService delegation.DelegationService) DelegationHandler {
	return &DelegationHandlerImpl{delegationService: delegationService}
}

// Delegate implements DelegationHandler.
func (h *DelegationHandlerImpl) Delegate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	var req delegation.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Delegate decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ActorID = actor.EmployeeID

	var errs validator.ValidationErrors
	checkUUID(&errs, "manager_id", &req.ManagerID)
	checkUUID(&errs, "delegate_manager_id", &req.DelegateManagerID)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.delegationService.Delegate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Delegation created successfully", result)
}

// Respond implements DelegationHandler.
func (h *DelegationHandlerImpl) Respond(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	var req delegation.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Respond decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.DelegateID = actor.EmployeeID

	var errs validator.ValidationErrors
	checkUUID(&errs, "delegation_id", &req.DelegationID)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.delegationService.Respond(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Delegation "+string(result.Status), result)
}

// Undelegate implements DelegationHandler. An empty body ends the caller's
// own delegation.
func (h *DelegationHandlerImpl) Undelegate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	var req delegation.UndelegateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("Undelegate decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.ActorID = actor.EmployeeID

	var errs validator.ValidationErrors
	checkUUID(&errs, "manager_id", &req.ManagerID)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.delegationService.Undelegate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Delegation ended", result)
}

// ListMine implements DelegationHandler.
func (h *DelegationHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.delegationService.ListMine(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListIncoming implements DelegationHandler.
func (h *DelegationHandlerImpl) ListIncoming(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	result, err := h.delegationService.ListIncoming(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
