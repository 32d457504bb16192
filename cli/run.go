package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/musclemap/apiprobe/config"
	"github.com/musclemap/apiprobe/pkg/catalog"
	"github.com/musclemap/apiprobe/pkg/models"
	"github.com/musclemap/apiprobe/pkg/service/orchestrator"
	"github.com/musclemap/apiprobe/pkg/service/scorecard"
	"github.com/musclemap/apiprobe/utils"
)

func init() {
	Register("run", Run)
}

func Run(ctx context.Context, logger *zap.Logger, conf *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "execute matching test scripts and produce a graded scorecard",
		Example: `apiprobe run --env staging --category workouts --format junit -o report.xml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := conf.ValidateFormat(); err != nil {
				return err
			}
			baseURL, err := conf.ResolveBaseURL()
			if err != nil {
				return err
			}

			scripts, err := catalog.Load(conf.ScriptsPath)
			if err != nil {
				return err
			}
			personas, err := catalog.LoadPersonas(conf.PersonasPath)
			if err != nil {
				return err
			}
			if _, err := catalog.ResolvePersona(personas, conf.Persona); err != nil {
				return err
			}

			orch := orchestrator.New(logger, conf, baseURL, personas)

			if conf.DryRun {
				listScripts(orch.Filter(scripts))
				return nil
			}

			runID := uuid.NewString()
			logger.Info("starting run",
				zap.String("runId", runID),
				zap.String("env", conf.Env),
				zap.String("baseUrl", baseURL),
				zap.Bool("parallel", conf.Parallel))

			start := time.Now()
			suites, err := orch.Run(ctx, scripts)
			if err != nil {
				utils.LogError(logger, err, "run failed")
				return err
			}

			sc := scorecard.Generate(runID, conf.Env, conf.Persona, time.Since(start), suites)
			if err := export(conf, sc); err != nil {
				utils.LogError(logger, err, "failed to export scorecard")
				return err
			}

			if sc.Summary.Failed > 0 {
				return utils.ErrTestsFailed
			}
			return nil
		},
	}

	cmd.Flags().Bool("parallel", conf.Parallel, "Run each script in its own concurrent context")
	cmd.Flags().Bool("fail-fast", conf.FailFast, "Abort remaining work after the first failure")
	cmd.Flags().Bool("dry-run", conf.DryRun, "List matching scripts without executing them")
	cmd.Flags().IntP("retries", "r", conf.Retries, "Default retry count for failing actions")
	cmd.Flags().Uint64P("timeout", "t", conf.Timeout, "Default network timeout in seconds")
	cmd.Flags().Int("rps", conf.RPS, "Rate-limit step dispatch to this many requests per second (0 = unlimited)")
	cmd.Flags().StringP("output", "o", conf.Output, "Write the report to this file instead of stdout")
	cmd.Flags().StringP("format", "f", conf.Format, "Report format (console, json, html, junit)")

	for flag, key := range map[string]string{
		"parallel": "parallel", "fail-fast": "failFast", "dry-run": "dryRun",
		"retries": "retries", "timeout": "timeout", "rps": "rps",
		"output": "output", "format": "format",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			utils.LogError(logger, err, "failed to bind run flags")
			return nil
		}
	}
	return cmd
}

func listScripts(scripts []*models.TestScript) {
	fmt.Printf("%d script(s) match:\n", len(scripts))
	for _, s := range scripts {
		fmt.Printf("  %-12s %-30s %d step(s)  %s\n", s.Category, s.Name, len(s.Steps), s.Description)
	}
}

func export(conf *config.Config, sc *models.Scorecard) error {
	out := os.Stdout
	if conf.Output != "" {
		f, err := os.Create(conf.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	switch conf.Format {
	case "json":
		return scorecard.ExportJSON(out, sc)
	case "junit":
		return scorecard.ExportJUnit(out, sc)
	case "html":
		return scorecard.ExportHTML(out, sc)
	default:
		if conf.Output != "" {
			models.IsAnsiDisabled = true
		}
		scorecard.RenderConsole(out, sc)
		return nil
	}
}
