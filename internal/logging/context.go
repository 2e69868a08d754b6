package logging

import (
	"context"
	"log/slog"

	"scenepack/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPackage is the standardized structured logging key for adventure package names.
	FieldPackage = "package"
	// FieldKind is the standardized structured logging key for document kinds.
	FieldKind = "kind"
	// FieldDocument is the standardized structured logging key for document UUIDs.
	FieldDocument = "document"
	// FieldOperation is the standardized structured logging key for pipeline operations.
	FieldOperation = "operation"
	// FieldAsset is the standardized structured logging key for asset URLs/paths.
	FieldAsset = "asset"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if name, ok := services.PackageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPackage, name))
	}
	if kind, ok := services.KindFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldKind, kind))
	}
	if uuid, ok := services.DocumentFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDocument, uuid))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, attr := range fields {
		args = append(args, attr)
	}
	return logger.With(args...)
}
