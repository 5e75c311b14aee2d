package http

import (
	"net/http"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type ReportHandler interface {
	GetStatistics(w http.ResponseWriter, r *http.Request)
}

type ReportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &ReportHandlerImpl{reportService: reportService}
}

// GetStatistics implements ReportHandler.
func (h *ReportHandlerImpl) GetStatistics(w http.ResponseWriter, r *http.Request) {
	req := report.StatisticsRequest{
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		ManagerID: queryString(r, "manager_id"),
	}

	var errs validator.ValidationErrors
	checkUUID(&errs, "manager_id", req.ManagerID)
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.reportService.GetStatistics(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
