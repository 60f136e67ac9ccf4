package bootstrap

import "context"

// AuditLog is an operational event worth keeping outside request logs,
// such as startup and shutdown. It is unrelated to the payroll provenance
// trail, which lives in the database.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
