package http

import (
	"net/http"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/arrangement"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type AuditHandlerImpl struct {
	auditService audit.AuditService
}

func NewAuditHandler(auditService audit.AuditService) AuditHandler {
	return &AuditHandlerImpl{auditService: auditService}
}

// List implements AuditHandler.
func (h *AuditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrAbort(w, r)
	if !ok {
		return
	}

	var errs validator.ValidationErrors
	filter := audit.AuditFilter{
		ViewerID:      actor.EmployeeID,
		ArrangementID: queryString(r, "arrangement_id"),
		BatchID:       queryString(r, "batch_id"),
		ActorID:       queryString(r, "actor_id"),
		From:          queryTime(r, "from", &errs),
		To:            queryTime(r, "to", &errs),
	}
	if action := queryString(r, "action"); action != nil {
		a := arrangement.Action(*action)
		filter.Action = &a
	}
	filter.Page, filter.Limit = queryPage(r)
	checkUUID(&errs, "arrangement_id", filter.ArrangementID)
	checkUUID(&errs, "batch_id", filter.BatchID)
	checkUUID(&errs, "actor_id", filter.ActorID)

	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.auditService.ListAuditLog(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, response.NewMeta(result.Page, result.Limit, result.TotalCount))
}
