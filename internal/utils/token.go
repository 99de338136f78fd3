// Package utils provides identifier helpers shared across the
// service.
package utils

import (
    "crypto/rand"
    "encoding/hex"
    "strings"

    "github.com/google/uuid"
)

// NewSessionToken returns the opaque token that keys a checkout
// session.  64 hex characters from a CSPRNG: the token is the only
// credential for the session, so it must be unguessable.
func NewSessionToken() (string, error) {
    buf := make([]byte, 32)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}

// NewOrderID returns a fresh unique order id used as the payment
// gateway's transaction reference.  Dashes are stripped because the
// gateway limits the reference to alphanumerics.
func NewOrderID() string {
    return strings.ReplaceAll(uuid.NewString(), "-", "")
}
