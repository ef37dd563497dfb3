package contextkeys

type contextKey string

// DBContextKey holds the request-scoped *gorm.DB in the gin context.
const DBContextKey = contextKey("db")

// Keys set by the auth middleware on the gin context.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)
