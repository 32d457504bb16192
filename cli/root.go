package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/musclemap/apiprobe/config"
	"github.com/musclemap/apiprobe/pkg/models"
	"github.com/musclemap/apiprobe/utils"
	logutil "github.com/musclemap/apiprobe/utils/log"
)

var rootExamples = `
  Run everything against local:
	apiprobe run

  Run one category against staging, fail fast:
	apiprobe run --env staging --category workouts --fail-fast

  List what a filter would execute:
	apiprobe scripts --category graphql
`

// SetFlags declares the persistent flags shared by every command and binds
// them to viper so config file values and flags merge.
func SetFlags(logger *zap.Logger, cmd *cobra.Command, conf *config.Config) error {
	cmd.PersistentFlags().StringP("scriptsPath", "s", conf.ScriptsPath, "Directory holding test script YAML files")
	cmd.PersistentFlags().String("personasPath", conf.PersonasPath, "Persona fixtures file")
	cmd.PersistentFlags().StringP("env", "e", conf.Env, "Target environment (local, staging, production)")
	cmd.PersistentFlags().String("base-url", conf.BaseURL, "Override the environment's base URL")
	cmd.PersistentFlags().StringP("category", "c", conf.Category, "Only run scripts of this category")
	cmd.PersistentFlags().String("suite", conf.Suite, "Only run scripts whose name contains this substring")
	cmd.PersistentFlags().StringP("persona", "u", conf.Persona, "Run as this persona")
	cmd.PersistentFlags().BoolP("verbose", "v", conf.Verbose, "Verbose output (step logs, debug level)")
	cmd.PersistentFlags().Bool("debug", conf.Debug, "Run in debug mode")
	cmd.PersistentFlags().Bool("disable-ansi", conf.DisableANSI, "Disable colored output")

	if err := viper.BindPFlag("scriptsPath", cmd.PersistentFlags().Lookup("scriptsPath")); err != nil {
		return err
	}
	if err := viper.BindPFlag("personasPath", cmd.PersistentFlags().Lookup("personasPath")); err != nil {
		return err
	}
	if err := viper.BindPFlag("env", cmd.PersistentFlags().Lookup("env")); err != nil {
		return err
	}
	if err := viper.BindPFlag("baseUrl", cmd.PersistentFlags().Lookup("base-url")); err != nil {
		return err
	}
	if err := viper.BindPFlag("category", cmd.PersistentFlags().Lookup("category")); err != nil {
		return err
	}
	if err := viper.BindPFlag("suite", cmd.PersistentFlags().Lookup("suite")); err != nil {
		return err
	}
	if err := viper.BindPFlag("persona", cmd.PersistentFlags().Lookup("persona")); err != nil {
		return err
	}
	if err := viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose")); err != nil {
		return err
	}
	if err := viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug")); err != nil {
		return err
	}
	return viper.BindPFlag("disableANSI", cmd.PersistentFlags().Lookup("disable-ansi"))
}

// CheckPersistent unmarshals the merged flag/file config and validates the
// parts every command needs before any network activity happens.
func CheckPersistent(logger *zap.Logger, conf *config.Config) error {
	if err := viper.Unmarshal(conf); err != nil {
		utils.LogError(logger, err, "failed to unmarshal the config")
		return err
	}

	if conf.Category != "" {
		if _, err := models.ParseCategory(conf.Category); err != nil {
			return err
		}
	}
	if _, err := conf.ResolveBaseURL(); err != nil {
		return err
	}

	if conf.DisableANSI {
		models.IsAnsiDisabled = true
	}
	if conf.Debug || conf.Verbose {
		if _, err := logutil.ChangeLogLevel(zapcore.DebugLevel); err != nil {
			utils.LogError(logger, err, "failed to change log level")
		}
	}

	logger.Debug("initialized with configuration", zap.Any("conf", conf))
	return nil
}

// Root builds the root command and attaches every registered subcommand.
func Root(ctx context.Context, logger *zap.Logger, version string) *cobra.Command {
	conf := config.New()

	var rootCmd = &cobra.Command{
		Use:     "apiprobe",
		Short:   "apiprobe runs declarative test scripts against the MuscleMap API and grades the results",
		Example: rootExamples,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return CheckPersistent(logger, conf)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate(`{{with .Version}}{{printf "apiprobe %s" .}}{{end}}{{"\n"}}`)

	if err := SetFlags(logger, rootCmd, conf); err != nil {
		utils.LogError(logger, err, "failed to set flags")
		return nil
	}

	for _, hook := range Registered {
		rootCmd.AddCommand(hook(ctx, logger, conf))
	}
	return rootCmd
}
