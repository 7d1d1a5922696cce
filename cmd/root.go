package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"gdpr-obfuscator/internal/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "GDPR"

var (
	cfgFile string
	Log     *logrus.Logger
)

var RootCmd = &cobra.Command{
	Use:   "gdpr-obfuscator",
	Short: "Mask personal data in CSV and JSON files stored in S3",
	Long: `
   ____ ____  ____  ____     ___  ____  _____ 
  / ___|  _ \|  _ \|  _ \   / _ \| __ )|  ___|
 | |  _| | | | |_) | |_) | | | | |  _ \| |_   
 | |_| | |_| |  __/|  _ <  | |_| | |_) |  _|  
  \____|____/|_|   |_| \_\  \___/|____/|_|    

GDPR Obfuscator - masks PII fields of files in S3 and writes an obfuscated copy
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var cfg logger.Config
		if err := viper.UnmarshalKey("log", &cfg); err != nil {
			return fmt.Errorf("failed to parse log config: %w", err)
		}
		l, err := logger.New(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		Log = l

		if f := viper.ConfigFileUsed(); f != "" {
			Log.WithField("file", f).Debug("using config file")
		}
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./gdpr-obfuscator.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("endpoint", "", "S3-compatible endpoint URL (e.g. http://localhost:9000)")
	flags.String("region", "", "AWS region of the buckets")

	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("storage.endpoint", flags.Lookup("endpoint"))
	viper.BindPFlag("storage.region", flags.Lookup("region"))

	setDefaults(viper.GetViper())
}

// initConfig reads in .env, the config file and GDPR_* environment variables.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: failed to load .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("gdpr-obfuscator")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: failed to read config:", err)
		}
	}
}
