// Package auth establishes the portal session used for every mod lookup.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/frederic-klein/modcheck/internal/portal"
)

// ErrAuthFailed wraps every failure of Acquire.
var ErrAuthFailed = errors.New("authentication failed")

// Mode selects how a session token is obtained.
type Mode int

const (
	// ModeNone skips authentication and uses an empty, always valid token.
	ModeNone Mode = iota
	// ModeVerify checks a token supplied by the user.
	ModeVerify
	// ModeLogin trades a username and password for a new token.
	ModeLogin
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeVerify:
		return "verify"
	case ModeLogin:
		return "login"
	default:
		return "none"
	}
}

// Credentials are the user-supplied login inputs.
type Credentials struct {
	User     string
	Token    string
	Password string
}

// Authenticator is the part of the portal client used here.
type Authenticator interface {
	VerifyToken(ctx context.Context, token portal.Token) (bool, error)
	Login(ctx context.Context, username, password string) (portal.Token, error)
}

// SelectMode picks the mode for the given inputs. A token takes
// precedence over a password. Without either, or when login is not
// required, no authentication is performed.
func SelectMode(requireLogin bool, creds Credentials) Mode {
	switch {
	case !requireLogin:
		return ModeNone
	case creds.Token != "":
		return ModeVerify
	case creds.Password != "":
		return ModeLogin
	default:
		return ModeNone
	}
}

// Acquire returns the session token for mode. ModeVerify and ModeLogin
// issue exactly one request through a.
func Acquire(ctx context.Context, a Authenticator, mode Mode, creds Credentials) (portal.Token, error) {
	switch mode {
	case ModeNone:
		return portal.Token{}, nil

	case ModeVerify:
		token := portal.Token{Username: creds.User, Token: creds.Token}
		valid, err := a.VerifyToken(ctx, token)
		if err != nil {
			return portal.Token{}, fmt.Errorf("%w: token verification: %w", ErrAuthFailed, err)
		}
		if !valid {
			return portal.Token{}, fmt.Errorf("%w: token verification failed", ErrAuthFailed)
		}
		return token, nil

	case ModeLogin:
		token, err := a.Login(ctx, creds.User, creds.Password)
		if err != nil {
			return portal.Token{}, fmt.Errorf("%w: login: %w", ErrAuthFailed, err)
		}
		return token, nil

	default:
		return portal.Token{}, fmt.Errorf("%w: unknown mode %d", ErrAuthFailed, mode)
	}
}
