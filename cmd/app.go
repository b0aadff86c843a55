// Package cmd implements the CLI application to manage a household budget.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/gormstore"
)

// Commands are registered by a main package and executed on user selection.
var Commands = []subcommands.Command{
	&accountsCmd{},
	&addAccountCmd{},
	&rmAccountCmd{},
	&addCmd{},
	&rmCmd{},
	&txCmd{},
	&importCmd{},
	&exportCmd{},
	&summaryCmd{},
	&chartCmd{},
	&predictCmd{},
	&recurCmd{},
}

// initConfig wires the configuration sources: a budgeteer.yaml next to the
// database or in the home directory, overridable with BGT_* environment
// variables. Called once from main before any command executes.
func initConfig() {
	viper.SetConfigName("budgeteer")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("bgt")
	viper.AutomaticEnv()

	viper.SetDefault("db", "budgeteer.db")
	viper.SetDefault("owner", "local")
	viper.SetDefault("currency", "USD")
	viper.SetDefault("verbose", false)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		}
	}
}

// Init prepares configuration; a main package calls it before Execute.
func Init() { initConfig() }

func owner() string    { return viper.GetString("owner") }
func currency() string { return viper.GetString("currency") }

// newLogger builds the console logger shared by all commands.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}

// openLedger opens the configured database and wires the engine onto it.
func openLedger() (*budgeteer.Ledger, error) {
	store, err := gormstore.Open(viper.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}
	return budgeteer.New(store, newLogger()), nil
}
