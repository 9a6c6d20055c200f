package player

import (
	"errors"
	"fmt"
	"log/slog"
)

// SinkFactory creates Sink instances based on configuration
type SinkFactory interface {
	CreateSink(backendType string) (Sink, error)
	GetSupportedBackends() []string
	IsValidBackendType(backendType string) bool
}

// Factory errors
var (
	ErrInvalidBackendType = errors.New("invalid sink backend type")
)

// DefaultSinkFactory implements SinkFactory with platform detection
type DefaultSinkFactory struct {
	detectBackend func() string
}

// NewSinkFactory creates a new DefaultSinkFactory with real platform
// detection
func NewSinkFactory() *DefaultSinkFactory {
	return &DefaultSinkFactory{detectBackend: DetectOptimalBackend}
}

// NewSinkFactoryWithDependencies creates a factory with injected platform
// detection for testing
func NewSinkFactoryWithDependencies(isWSLFunc func() bool) *DefaultSinkFactory {
	return &DefaultSinkFactory{
		detectBackend: func() string {
			return detectOptimalBackendForPlatform(isWSLFunc())
		},
	}
}

// CreateSink creates a Sink instance based on the specified backend type
func (f *DefaultSinkFactory) CreateSink(backendType string) (Sink, error) {
	if backendType == "" {
		backendType = "auto"
	}

	slog.Debug("creating audio sink", "type", backendType)

	switch backendType {
	case "auto":
		if f.detectBackend() == "beep" {
			return NewBeepSink(), nil
		}
		return NewMalgoSink(), nil
	case "beep":
		return NewBeepSink(), nil
	case "malgo":
		return NewMalgoSink(), nil
	default:
		slog.Error("invalid sink backend type requested", "type", backendType)
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackendType, backendType)
	}
}

// GetSupportedBackends returns a list of all supported backend types
func (f *DefaultSinkFactory) GetSupportedBackends() []string {
	return []string{"auto", "beep", "malgo"}
}

// IsValidBackendType checks if a backend type is supported
func (f *DefaultSinkFactory) IsValidBackendType(backendType string) bool {
	// Empty string is valid (defaults to auto)
	if backendType == "" {
		return true
	}
	for _, supported := range f.GetSupportedBackends() {
		if backendType == supported {
			return true
		}
	}
	return false
}
