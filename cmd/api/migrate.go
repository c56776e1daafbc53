package api

import (
	"github.com/scienceol/sampletrack/internal/config"
	"github.com/scienceol/sampletrack/pkg/repo/migrate"
	"github.com/scienceol/sampletrack/pkg/repo/store"
	"github.com/spf13/cobra"
)

func NewMigrate() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Long:         "Create or update the order, sample, qc_results and shipment tables",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return store.InitMigrate(cmd.Context(), config.Global())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate.Table(cmd.Root().Context())
		},
		PostRunE: func(cmd *cobra.Command, _ []string) error {
			store.Close(cmd.Context())
			return nil
		},
	}
}
