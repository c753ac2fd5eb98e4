package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values.
type ContextKey string

// Request context keys shared between handlers and flows.
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

const (
	// DefaultLookupTimeout bounds a single master-data lookup.
	DefaultLookupTimeout = 5 * time.Second

	// CORSMaxAge caches CORS preflight responses, in seconds.
	CORSMaxAge = 3600
)
