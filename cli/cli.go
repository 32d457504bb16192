// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/musclemap/apiprobe/config"
)

type HookFunc func(ctx context.Context, logger *zap.Logger, conf *config.Config) *cobra.Command

// Registered holds the registered command hooks.
var Registered map[string]HookFunc

func Register(name string, f HookFunc) {
	if Registered == nil {
		Registered = make(map[string]HookFunc)
	}
	Registered[name] = f
}
