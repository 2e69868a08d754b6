package services

import "context"

type contextKey string

const (
	packageKey   contextKey = "package"
	kindKey      contextKey = "kind"
	documentKey  contextKey = "document"
	operationKey contextKey = "operation"
)

// WithPackage annotates context with the adventure package name being
// exported or imported.
func WithPackage(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, packageKey, name)
}

// PackageFromContext extracts the package name if present.
func PackageFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(packageKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithKind annotates context with the document kind currently being processed.
func WithKind(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, kindKey, kind)
}

// KindFromContext returns the document kind if present.
func KindFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(kindKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithDocument annotates context with the UUID of the document being
// processed so recoverable failures can be attributed to it.
func WithDocument(ctx context.Context, uuid string) context.Context {
	if uuid == "" {
		return ctx
	}
	return context.WithValue(ctx, documentKey, uuid)
}

// DocumentFromContext returns the document UUID if present.
func DocumentFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(documentKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithOperation annotates context with the pipeline operation name
// (export, import, resolve).
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(operationKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
