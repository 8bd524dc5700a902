package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cxxforge/internal/adapters"
	"cxxforge/internal/app"
	"cxxforge/internal/core"
	"cxxforge/internal/proc"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "CXXFORGE"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		code := exitCodeForError(err)
		fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
		if code == 2 {
			fmt.Fprintln(os.Stderr, "see 'cxxforge --help' for usage")
		}
		os.Exit(code)
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "cxxforge",
		Short:         "C++ module build orchestrator",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newGenerateCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("cxxforge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/cxxforge")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// newAppService wires the production service: a process lifetime scope
// with interrupt teardown, and a registry merged from the user-global
// and project-local override layers.
func newAppService() (app.Service, error) {
	scope, err := proc.NewScope()
	if err != nil {
		return app.Service{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create process lifetime scope").
			WithCause(err)
	}
	proc.InstallInterruptHandler(scope)

	registry, err := core.LoadRegistry(userRegistryPath(), adapters.RegistryFileName)
	if err != nil {
		return app.Service{}, err
	}
	return app.NewService(scope, registry), nil
}

func userRegistryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cxxforge", adapters.RegistryFileName)
}

// exitCodeForError maps error codes onto the tri-state exit convention:
// 0 success, 2 usage/configuration error, 1 runtime or tool failure.
func exitCodeForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument,
		errbuilder.CodeFailedPrecondition,
		errbuilder.CodeAlreadyExists,
		errbuilder.CodeNotFound:
		return 2
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}
