package cmd

import (
	"fmt"

	"github.com/bnema/ghostreel/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var verbose bool
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "ghost",
		Short:         "ghost: rotate accounts and deliver personalized clips",
		Long:          "ghost manages a pool of platform accounts, cuts and personalizes short clips, and runs outreach campaigns that publish, share and message each target while tracking progress on disk.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := newLogger(cfg.LogLevel, verbose)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}

			wired, err := wireApp(v, cfg, logger)
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newPoolCmd(app),
		newStatusCmd(app),
		newChunkCmd(app),
		newPersonalizeCmd(app),
		newCampaignCmd(app),
		newSendCmd(app),
		newMessageCmd(app),
		newPostCmd(app),
		newShareCmd(app),
		newUserCmd(app),
		newAudienceCmd(app),
	)

	return rootCmd
}

// newLogger writes structured logs to stderr at level. verbose forces debug.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()

	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zapConfig.Level = atomic
	if verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return zapConfig.Build()
}
