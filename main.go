package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/scienceol/sampletrack/cmd/api"
	"github.com/scienceol/sampletrack/cmd/relay"
	"github.com/scienceol/sampletrack/internal/config"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// @title           Sample Tracking API
// @version         1.0
// @description     Order intake, manufacturing queue, QC and shipping for synthesized samples.
// @BasePath        /api
func main() {
	rootCtx := utils.SetupSignalContext()
	root := &cobra.Command{
		SilenceUsage:      true,
		Short:             "sampletrack",
		Long:              "sampletrack - order, QC and shipment tracking for lab samples",
		PersistentPreRunE: initGlobalResource,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
		PersistentPostRunE: cleanGlobalResource,
	}
	root.SetContext(rootCtx)
	root.AddCommand(api.NewWeb())
	root.AddCommand(api.NewMigrate())
	root.AddCommand(relay.New())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initGlobalResource(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found - using environment variables")
	}

	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.AutomaticEnv()

	conf := config.Global()
	if err := v.Unmarshal(conf); err != nil {
		log.Fatal(err)
	}

	logger.Init(&logger.LogConfig{
		Path:     conf.Log.LogPath,
		LogLevel: conf.Log.LogLevel,
		ServiceEnv: logger.ServiceEnv{
			Platform: conf.Server.Platform,
			Service:  conf.Server.Service,
			Env:      conf.Server.Env,
		},
	})

	return nil
}

func cleanGlobalResource(_ *cobra.Command, _ []string) error {
	logger.Close()
	return nil
}
