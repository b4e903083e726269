package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"igloader/pkg/target"
)

var urlAccount string

// urlCmd downloads whatever a single Instagram link points at.
var urlCmd = &cobra.Command{
	Use:   "url <link>",
	Short: "Download a single post, reel, story or highlight by URL",
	Long: `Download the media behind one Instagram link. Supported shapes:

  https://www.instagram.com/p/<shortcode>/
  https://www.instagram.com/reel/<shortcode>/
  https://www.instagram.com/stories/<username>/<media-id>/
  https://www.instagram.com/stories/highlights/<highlight-id>/`,
	Example: `  igloader url https://www.instagram.com/p/Cxyz123AbCd/
  igloader url https://www.instagram.com/stories/natgeo/3141592653589793238/`,
	Args: cobra.ExactArgs(1),
	RunE: runURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)

	urlCmd.Flags().StringVarP(&urlAccount, "account", "a", "", "use a specific stored account")
	urlCmd.Flags().StringVarP(&fetchOutputDir, "output", "o", "", "output directory (default from config)")
}

func runURL(cmd *cobra.Command, args []string) error {
	t, err := target.FromURL(args[0])
	if err != nil {
		return fmt.Errorf("unrecognized link: %w", err)
	}

	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	if fetchOutputDir != "" {
		cfg.Output.BaseDirectory = fetchOutputDir
	}

	account, err := resolveAccount(cfg, urlAccount)
	if err != nil {
		return fmt.Errorf("no credentials available, run 'igloader auth login' first: %w", err)
	}

	// One-shot downloads are not worth a checkpoint.
	return runSession(cfg, account, []target.Target{t}, "", false)
}
