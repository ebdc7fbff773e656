package domain

import (
	"errors"
	"fmt"
)

// Sentinels for the lookup failure kinds, match with errors.Is
var (
	ErrRateLimited = errors.New("rate limit exceeded")
	ErrNetwork     = errors.New("network error")
	ErrProtocol    = errors.New("protocol error")
)

// ConfigError is returned before any work starts when a config value is invalid
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// IsConfigError reports whether err is or wraps a *ConfigError
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// LookupKind classifies lookup failures
type LookupKind int

const (
	KindNetwork LookupKind = iota
	KindProtocol
	KindRateLimited
)

func (k LookupKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindProtocol:
		return "protocol"
	default:
		return "network"
	}
}

func (k LookupKind) sentinel() error {
	switch k {
	case KindRateLimited:
		return ErrRateLimited
	case KindProtocol:
		return ErrProtocol
	default:
		return ErrNetwork
	}
}

// LookupError is a failed availability lookup for a single name
type LookupError struct {
	Kind LookupKind
	Name string
	Err  error
}

// NewLookupError builds a LookupError
func NewLookupError(kind LookupKind, name string, err error) *LookupError {
	return &LookupError{Kind: kind, Name: name, Err: err}
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("lookup %s: %s", e.Name, e.Kind.sentinel())
	}
	return fmt.Sprintf("lookup %s: %s: %v", e.Name, e.Kind.sentinel(), e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels
func (e *LookupError) Is(target error) bool {
	return target == e.Kind.sentinel()
}
