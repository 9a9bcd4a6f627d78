package constants

// Session / context keys
const (
	ContextKeyUserID = "user_id"
	SessionName      = "creax_session"
)

// Auth
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Upload boundary limits, enforced before the protection engine runs.
const (
	MaxImageUploadBytes = 15 << 20
	MaxVideoUploadBytes = 200 << 20
)
