package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Context keys propagated from the HTTP layer into business flows
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Support ticket constants
const (
	// MaxTicketImages is the maximum number of images attachable at ticket creation
	MaxTicketImages = 5

	// MaxTicketDescriptionLen bounds the free-text description
	MaxTicketDescriptionLen = 2000

	// MaxCustomCategoryLen bounds the client-supplied custom category string
	MaxCustomCategoryLen = 120

	// MaxMessageLen bounds a single chat message body
	MaxMessageLen = 2000
)
