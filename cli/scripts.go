package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/musclemap/apiprobe/config"
	"github.com/musclemap/apiprobe/pkg/catalog"
	"github.com/musclemap/apiprobe/pkg/service/orchestrator"
)

func init() {
	Register("scripts", Scripts)
}

// Scripts lists the catalog entries the current filters would execute.
func Scripts(_ context.Context, logger *zap.Logger, conf *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "scripts",
		Short:   "list test scripts matching the current filters",
		Example: `apiprobe scripts --category auth`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scripts, err := catalog.Load(conf.ScriptsPath)
			if err != nil {
				return err
			}
			baseURL, err := conf.ResolveBaseURL()
			if err != nil {
				return err
			}
			orch := orchestrator.New(logger, conf, baseURL, nil)
			listScripts(orch.Filter(scripts))
			return nil
		},
	}
}
