package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"igloader/pkg/target"
)

var (
	savedAccount      string
	savedSince        string
	savedUntil        string
	savedForceRestart bool
)

// savedCmd downloads the authenticated account's saved collection.
var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Download your saved posts",
	Long: `Download every post in the logged-in account's saved collection.
Files land under the saving user's own directory, grouped by the
original poster. Requires valid session credentials.`,
	Example: `  igloader saved
  igloader saved --since 2026-01-01`,
	Args: cobra.NoArgs,
	RunE: runSaved,
}

func init() {
	rootCmd.AddCommand(savedCmd)

	savedCmd.Flags().StringVarP(&savedAccount, "account", "a", "", "use a specific stored account")
	savedCmd.Flags().StringVarP(&fetchOutputDir, "output", "o", "", "output directory (default from config)")
	savedCmd.Flags().StringVar(&savedSince, "since", "", "only items saved on or after this date (YYYY-MM-DD)")
	savedCmd.Flags().StringVar(&savedUntil, "until", "", "only items saved on or before this date (YYYY-MM-DD)")
	savedCmd.Flags().BoolVar(&savedForceRestart, "force-restart", false, "ignore the existing checkpoint")
}

func runSaved(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	if fetchOutputDir != "" {
		cfg.Output.BaseDirectory = fetchOutputDir
	}

	dates, err := parseDateRange(savedSince, savedUntil)
	if err != nil {
		return err
	}

	account, err := resolveAccount(cfg, savedAccount)
	if err != nil {
		return fmt.Errorf("saved posts require a logged-in account, run 'igloader auth login': %w", err)
	}

	root := target.Target{
		Kind:     target.KindSavedPage,
		Username: account.Username,
		Page:     1,
		Dates:    dates,
	}

	return runSession(cfg, account, []target.Target{root}, account.Username+".saved", savedForceRestart)
}
