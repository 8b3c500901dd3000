package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pokerescrow/internal/codec"
	"pokerescrow/internal/config"
	"pokerescrow/internal/state"
)

func loadState(v *viper.Viper) (*state.State, error) {
	home := v.GetString(config.KeyHome)
	st, err := state.Load(filepath.Join(home, "app"))
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return st, nil
}

func newSessionsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions from the persisted state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := loadState(v)
			if err != nil {
				return err
			}
			out, err := renderSessions(st)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newAccountsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List account balances from the persisted state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := loadState(v)
			if err != nil {
				return err
			}
			out, err := renderAccounts(st)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func renderSessions(st *state.State) (string, error) {
	data := pterm.TableData{{"ID", "Dealer", "Buy-in", "State", "Players", "Current bet", "Pot", "Winner"}}
	for _, id := range st.SessionIDs() {
		s := st.Sessions[id]
		data = append(data, []string{
			fmt.Sprintf("%d", s.ID),
			s.Dealer,
			codec.FormatEther(s.BuyIn),
			string(s.Phase),
			fmt.Sprintf("%d", len(s.Players)),
			codec.FormatEther(s.CurrentBet),
			codec.FormatEther(s.Pot),
			s.Winner,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func renderAccounts(st *state.State) (string, error) {
	addrs := make([]string, 0, len(st.Accounts))
	for addr := range st.Accounts {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	data := pterm.TableData{{"Account", "Balance (ETH)", "Registered", "Nonce"}}
	for _, addr := range addrs {
		registered := "no"
		if len(st.AccountKeys[addr]) != 0 {
			registered = "yes"
		}
		data = append(data, []string{
			addr,
			codec.FormatEther(st.Balance(addr)),
			registered,
			fmt.Sprintf("%d", st.NonceMax[addr]),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
