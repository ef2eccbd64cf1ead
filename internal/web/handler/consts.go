package handler

const (
	// RootPath is the root path of a route group.
	RootPath = "/"

	// APIPath prefixes every JSON route.
	APIPath = "/api"

	// ErrNilACDFatalLogMsg is used if app or deps are nil.
	ErrNilACDFatalLogMsg = "app or handler dependencies are nil"
)
