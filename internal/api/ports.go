package api

import (
	"context"
	"crypto/rsa"
	"net/http"

	"observability/internal/domain"
)

// JWKSProvider resolves the identity provider's RS256 signing keys by kid.
type JWKSProvider interface {
	GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// ResponseRecorder wraps an http.ResponseWriter and remembers the status
// sent and, for error envelopes, the error kind.
type ResponseRecorder struct {
	http.ResponseWriter
	status    int
	wrote     bool
	errorKind string
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rr *ResponseRecorder) WriteHeader(code int) {
	if !rr.wrote {
		rr.status = code
		rr.wrote = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *ResponseRecorder) Write(b []byte) (int, error) {
	rr.wrote = true
	return rr.ResponseWriter.Write(b)
}

// Status is the first status written, or 200 if the handler never called
// WriteHeader.
func (rr *ResponseRecorder) Status() int { return rr.status }

// ErrorKind is the kind of the error envelope written, if any.
func (rr *ResponseRecorder) ErrorKind() string { return rr.errorKind }

func (rr *ResponseRecorder) Unwrap() http.ResponseWriter { return rr.ResponseWriter }

// MarkErrorKind tags every ResponseRecorder in w's wrapper chain with kind.
func MarkErrorKind(w http.ResponseWriter, kind string) {
	for w != nil {
		if rr, ok := w.(*ResponseRecorder); ok {
			rr.errorKind = kind
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return
		}
		w = u.Unwrap()
	}
}

type ctxKey int

const (
	principalKey ctxKey = iota
	requestIDKey
)

// PrincipalFromContext returns the principal the auth middleware attached.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
