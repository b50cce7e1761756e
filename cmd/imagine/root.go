package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/phrazzld/imagine/internal/config"
	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/spf13/cobra"
)

type commandContext struct {
	configFlag *string

	once   sync.Once
	config *config.Config
	logger *slog.Logger
	err    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads configuration and installs the process logger once.
func (c *commandContext) ensureConfig() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}

		cfg, err := config.LoadFile(path)
		if err != nil {
			c.err = fmt.Errorf("failed to load configuration: %w", err)
			return
		}

		log, err := logger.Setup(cfg.Server)
		if err != nil {
			c.err = fmt.Errorf("failed to set up logger: %w", err)
			return
		}

		c.config = cfg
		c.logger = log
	})
	return c.config, c.logger, c.err
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "imagine",
		Short:         "Generate images from catalog inspiration and serve them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newCollectCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))

	return rootCmd
}
