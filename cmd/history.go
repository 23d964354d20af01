package cmd

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrkbench/internal/cli"
	"wrkbench/internal/config"
	"wrkbench/internal/tui/history"
)

var plainHistory bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded benchmark runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(viper.GetString(config.KeyHistoryPath))
		if err != nil {
			return err
		}
		defer store.Close()

		if !plainHistory && isatty.IsTerminal(os.Stdout.Fd()) {
			_, err := tea.NewProgram(history.NewModel(store), tea.WithAltScreen()).Run()
			return err
		}

		items, err := store.List()
		if err != nil {
			return err
		}
		cli.PrintHistory(cmd.OutOrStdout(), items)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(viper.GetString(config.KeyHistoryPath))
		if err != nil {
			return err
		}
		defer store.Close()

		item, err := store.Get(args[0])
		if err != nil {
			return err
		}
		cli.PrintRun(cmd.OutOrStdout(), *item)
		return nil
	},
}

func init() {
	historyListCmd.Flags().BoolVar(&plainHistory, "plain", false, "print a static table instead of the interactive browser")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
}
