package types

const ContextUserKey = "user"

// Default allowed origins for development; the configured frontend origin
// is appended by the router.
var DefaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}
