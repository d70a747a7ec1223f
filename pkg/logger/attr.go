package logger

import "log/slog"

// Error records a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// ActorID records the acting user identifier under the key "actor_id".
func ActorID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("actor_id", id)
}

// Operation records the operation name under the key "operation".
func Operation(name string) slog.Attr {
	return slog.String("operation", name)
}

// SecurityEvent marks a record as a security event under the key "security_event".
func SecurityEvent(kind string) slog.Attr {
	return slog.String("security_event", kind)
}
