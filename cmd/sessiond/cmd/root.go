package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokerescrow/internal/config"
)

// NewRootCmd creates the sessiond command tree. Each call gets its own viper
// instance so commands can be built repeatedly in tests.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "sessiond",
		Short:         "Poker session escrow ABCI application",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().String(config.KeyHome, config.DefaultHome, "node home directory (state lives under <home>/app)")
	if err := v.BindPFlag(config.KeyHome, rootCmd.PersistentFlags().Lookup(config.KeyHome)); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		newStartCmd(v),
		newSessionsCmd(v),
		newAccountsCmd(v),
	)
	return rootCmd
}
