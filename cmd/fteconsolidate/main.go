package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/locvowork/supplier_fte_dashboard/internal/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "fteconsolidate",
		Short: "Supplier FTE consolidation reports",
		Long: `fteconsolidate reads consolidated supplier reports (.xlsx), keeps the
in-scope rows, totals FTEs per supplier and writes the analysis workbook,
the 0-3 FTE selection workbook and its PDF for every input file.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./fteconsolidate.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "also append logs to this file")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(analyzeCmd())
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("fteconsolidate")
		viper.SetConfigType("yaml")
	}

	// FTE_ANALYSIS_STATUS_COLUMN overrides analysis.status_column.
	viper.SetEnvPrefix("FTE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.InitLogging(logger.Options{
		FilePath: viper.GetString("logging.file"),
		Level:    viper.GetString("logging.level"),
		Console:  true,
	})
	return nil
}
