package portal

import (
	"errors"

	"github.com/frederic-klein/modcheck/internal/mod"
)

var (
	ErrNotFound     = errors.New("mod not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrMalformed    = errors.New("malformed response")
)

// Kind classifies the outcome of a mod lookup.
type Kind int

const (
	KindOK Kind = iota
	KindNotFound
	KindAuthError
	KindMalformed
	KindFailed // transport errors, timeouts, unexpected status codes
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not found"
	case KindAuthError:
		return "auth error"
	case KindMalformed:
		return "malformed"
	default:
		return "failed"
	}
}

// Result is the outcome of one mod lookup. Info is set only for KindOK.
type Result struct {
	Kind Kind
	Info *mod.Info
	Err  error
}

// OK wraps a decoded mod.
func OK(info *mod.Info) Result {
	return Result{Kind: KindOK, Info: info}
}

// Failure builds a non-OK result, deriving the kind from err.
func Failure(err error) Result {
	kind := KindFailed
	switch {
	case errors.Is(err, ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, ErrUnauthorized):
		kind = KindAuthError
	case errors.Is(err, ErrMalformed):
		kind = KindMalformed
	}
	return Result{Kind: kind, Err: err}
}

// Token identifies a portal user. The zero Token is used when the portal
// does not require login.
type Token struct {
	Username string
	Token    string
}
