package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

// actorOrAbort returns the authenticated actor, writing 401 when absent.
func actorOrAbort(w http.ResponseWriter, r *http.Request) (middleware.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return middleware.Actor{}, false
	}
	return actor, true
}

func queryString(r *http.Request, key string) *string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return &v
	}
	return nil
}

// queryPage reads page and limit. Unparseable values fall back to defaults.
func queryPage(r *http.Request) (page, limit int) {
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = l
	}
	return page, limit
}

// queryTime accepts RFC 3339 timestamps or YYYY-MM-DD dates.
func queryTime(r *http.Request, key string, errs *validator.ValidationErrors) *time.Time {
	v := queryString(r, key)
	if v == nil {
		return nil
	}
	if t, ok := validator.IsValidDateTime(*v); ok {
		return &t
	}
	if t, ok := validator.IsValidDate(*v); ok {
		return &t
	}
	*errs = append(*errs, validator.ValidationError{
		Field:   key,
		Message: key + " must be an RFC 3339 timestamp or YYYY-MM-DD date",
	})
	return nil
}

// checkUUID records a validation error when a supplied id is not a UUID.
// Absent values are left to the request's own validation.
func checkUUID(errs *validator.ValidationErrors, field string, value *string) {
	if value == nil || validator.IsEmpty(*value) || validator.IsValidUUID(*value) {
		return
	}
	*errs = append(*errs, validator.ValidationError{
		Field:   field,
		Message: field + " must be a valid UUID",
	})
}
