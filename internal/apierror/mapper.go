package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"observability/internal/domain"
)

// ErrConflictingStatus is returned when a kind is registered twice with
// different statuses.
var ErrConflictingStatus = errors.New("apierror: kind already registered with a different status")

type mapping struct {
	status   int
	fallback string
}

// Mapper is a dispatch table from failure kind to HTTP status.
//
// Contract:
//   - Concurrency: safe for concurrent use; Register may run alongside MapToResponse.
//   - Errors: MapToResponse never fails and never panics.
type Mapper struct {
	mu    sync.RWMutex
	kinds map[Kind]mapping
}

// NewMapper creates a mapper with only the invocation-failure fallback registered.
func NewMapper() *Mapper {
	return &Mapper{
		kinds: map[Kind]mapping{
			KindInvocationFailure: {status: http.StatusInternalServerError, fallback: GenericMessage},
		},
	}
}

// Register adds a kind with its status and the message used when a failure
// carries none.
func (m *Mapper) Register(kind Kind, status int, fallback string) error {
	if strings.TrimSpace(string(kind)) == "" {
		return errors.New("apierror: kind is required")
	}
	if status < 400 || status > 599 {
		return fmt.Errorf("apierror: status %d for kind %q is not an error status", status, kind)
	}
	if fallback == "" {
		fallback = strings.ToLower(http.StatusText(status))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.kinds[kind]; ok {
		if existing.status != status {
			return fmt.Errorf("%w: %q maps to %d", ErrConflictingStatus, kind, existing.status)
		}
		return nil
	}
	m.kinds[kind] = mapping{status: status, fallback: fallback}
	return nil
}

// Status returns the registered status for kind.
func (m *Mapper) Status(kind Kind) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mp, ok := m.kinds[kind]
	return mp.status, ok
}

// MapToResponse converts err into a status code and envelope. Errors that are
// not an *Error, and kinds that were never registered, become a 500 with the
// generic message.
func (m *Mapper) MapToResponse(err error) (int, domain.ErrorResponse) {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr == nil {
		return m.internal()
	}

	m.mu.RLock()
	mp, ok := m.kinds[apiErr.kind]
	m.mu.RUnlock()
	if !ok {
		return m.internal()
	}

	msg := apiErr.message
	if msg == "" {
		msg = mp.fallback
	}
	return mp.status, domain.ErrorResponse{Status: mp.status, Message: msg}
}

func (m *Mapper) internal() (int, domain.ErrorResponse) {
	return http.StatusInternalServerError, domain.ErrorResponse{
		Status:  http.StatusInternalServerError,
		Message: GenericMessage,
	}
}

// DefaultMapper is the process mapper with every built-in kind registered.
var DefaultMapper = NewMapper()

func init() {
	builtins := []struct {
		kind     Kind
		status   int
		fallback string
	}{
		{KindBadRequest, http.StatusBadRequest, "bad request"},
		{KindUnauthorized, http.StatusUnauthorized, "authentication required"},
		{KindForbidden, http.StatusForbidden, "insufficient permissions"},
		{KindNotFound, http.StatusNotFound, "resource not found"},
		{KindMethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed"},
		{KindConfigurationUnavailable, http.StatusServiceUnavailable, "authentication configuration unavailable"},
	}
	for _, b := range builtins {
		if err := DefaultMapper.Register(b.kind, b.status, b.fallback); err != nil {
			panic(err)
		}
	}
}
