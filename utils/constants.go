package utils

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request-scoped context keys for observability
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Creation naming constraints
const (
	// CreationNameMinLen is the minimum length of a creation name
	CreationNameMinLen = 3

	// CreationNameMaxLen is the maximum length of a creation name
	CreationNameMaxLen = 30

	// MaxPrimaryFlavors is the maximum number of flavors in one creation
	MaxPrimaryFlavors = 3
)

// Image pipeline constants
const (
	// ImageTargetBytes is the soft target for re-encoded creation images (~500KB)
	ImageTargetBytes = 500 * 1024

	// ImageMaxDimension is the longest edge after downscaling
	ImageMaxDimension = 1024

	// ImageJPEGQuality is the JPEG quality used when re-encoding
	ImageJPEGQuality = 75
)
