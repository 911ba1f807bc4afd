package errx

import (
	"sync"
)

// Definition is a registered error code with its response defaults
type Definition struct {
	Code        Code
	HTTPStatus  int
	Status      Status
	Operational bool
	Message     string
}

// Registry manages the error definitions of a module
type Registry struct {
	prefix string
	codes  map[Code]*Definition
	mu     sync.RWMutex
}

// NewRegistry creates a new error registry.
// An empty prefix registers codes verbatim.
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		codes:  make(map[Code]*Definition),
	}
}

// Register registers a new error definition
func (r *Registry) Register(code Code, httpStatus int, status Status, operational bool, message string) *Definition {
	r.mu.Lock()
	defer r.mu.Unlock()

	fullCode := code
	if r.prefix != "" {
		fullCode = Code(r.prefix + "_" + string(code))
	}

	def := &Definition{
		Code:        fullCode,
		HTTPStatus:  httpStatus,
		Status:      status,
		Operational: operational,
		Message:     message,
	}

	r.codes[fullCode] = def
	return def
}

// New creates a new error from a registered definition
func (r *Registry) New(def *Definition) *Error {
	return newError(def, "", 1)
}

// NewWithMessage creates a new error with a custom message
func (r *Registry) NewWithMessage(def *Definition, message string) *Error {
	return newError(def, message, 1)
}

// NewWithCause creates a new error carrying the underlying cause
func (r *Registry) NewWithCause(def *Definition, cause error) *Error {
	e := newError(def, "", 1)
	e.Err = cause
	return e
}

// Get retrieves a registered definition
func (r *Registry) Get(code Code) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.codes[code]
	return def, exists
}

// Codes returns all registered definitions
func (r *Registry) Codes() map[Code]*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Return a copy to prevent external modifications
	codes := make(map[Code]*Definition, len(r.codes))
	for k, v := range r.codes {
		codes[k] = v
	}
	return codes
}
