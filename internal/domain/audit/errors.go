package audit

import "errors"

var ErrAuditLogForbidden = errors.New("Not allowed to view this audit log")
