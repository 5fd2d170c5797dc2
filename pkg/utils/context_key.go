package utils

// ContextKey is the type used for request-scoped values set by middleware.
type ContextKey string
