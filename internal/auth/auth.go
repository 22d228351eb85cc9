// Package auth verifies bearer credentials and reports the identity claims
// the admin policies are evaluated against.
package auth

import (
	"context"

	"github.com/pkg/errors"
)

// ErrInvalidToken is returned for credentials that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified identity carried by a bearer credential.
type Claims struct {
	Subject string
	Email   string
	Admin   bool
}

// Verifier validates a bearer credential.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
	// Name identifies the identity provider in health reports.
	Name() string
}
