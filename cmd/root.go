package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"wrkbench/internal/banner"
	"wrkbench/internal/config"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool

	configErr error
	logger    = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "wrkbench",
	Short: "wrkbench - wrk benchmark orchestration",
	Long: `
wrkbench drives the wrk HTTP load generator against a set of named
targets and a shared list of endpoints, and writes one JSON report
per target.

  wrkbench run -T gin=http://localhost:8080 -T flask=http://localhost:5000
  wrkbench run -i                      # ask for target URLs
  wrkbench parse report.txt            # parse a saved wrk report
  wrkbench history list`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		l, err := newLogger(cmd.ErrOrStderr(), logLevel, logJSON)
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("config loaded")
		}
		return nil
	},
}

func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./wrkbench.yaml, then $HOME/.wrkbench.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON lines instead of console output")
	rootCmd.PersistentFlags().String("history-db", "", "history database (default is $HOME/.wrkbench/history.db)")

	bindFlags(rootCmd.PersistentFlags().Lookup, map[string]string{
		config.KeyHistoryPath: "history-db",
	})

	rootCmd.AddCommand(runCmd, parseCmd, historyCmd)
}

func initConfig() {
	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		configErr = fmt.Errorf("load .env: %w", err)
		return
	}

	config.SetDefaults(viper.GetViper())
	viper.SetConfigType("yaml")

	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case fileExists("wrkbench.yaml"):
		viper.SetConfigFile("wrkbench.yaml")
	default:
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".wrkbench")
		}
	}

	viper.SetEnvPrefix("WRKBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
	}
}

func newLogger(w io.Writer, level string, asJSON bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	if !asJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func bindFlags(lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, lookup(name)); err != nil {
			panic(err)
		}
	}
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
