package player

import (
	"log/slog"

	"github.com/gen2brain/malgo"
)

// deviceContext wraps malgo.AllocatedContext with lifecycle management and
// slog integration
type deviceContext struct {
	ctx *malgo.AllocatedContext
}

// newDeviceContext initializes a new malgo audio context
func newDeviceContext() (*deviceContext, error) {
	slog.Debug("initializing malgo audio context")

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo internal", "message", message)
	})
	if err != nil {
		slog.Error("failed to initialize malgo audio context", "error", err)
		return nil, err
	}

	slog.Debug("malgo audio context initialized")
	return &deviceContext{ctx: ctx}, nil
}

// Close cleans up the malgo context; malgo requires both Uninit and Free
func (c *deviceContext) Close() error {
	if c.ctx == nil {
		return nil
	}

	if err := c.ctx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo audio context", "error", err)
		return err
	}
	c.ctx.Free()
	c.ctx = nil

	slog.Debug("malgo audio context closed")
	return nil
}
