// Package acl holds access-control adapters that sit between the HTTP
// layer and the write coordinator.
package acl

import (
	"context"

	"go.uber.org/zap"

	"cortex-backend/application/ports"
)

// ConfigWriteGate permits writes based on a deployment-time switch.
// Flipping WRITES_ENABLED off turns the whole API read-only without a
// redeploy of consumers.
type ConfigWriteGate struct {
	enabled bool
	logger  *zap.Logger
}

// NewConfigWriteGate creates a write gate driven by configuration
func NewConfigWriteGate(enabled bool, logger *zap.Logger) ports.WriteGate {
	return &ConfigWriteGate{
		enabled: enabled,
		logger:  logger,
	}
}

// IsWritePermitted reports whether write operations are currently allowed
func (g *ConfigWriteGate) IsWritePermitted(ctx context.Context) bool {
	if !g.enabled {
		g.logger.Warn("write rejected: writes are disabled")
		return false
	}
	return true
}
