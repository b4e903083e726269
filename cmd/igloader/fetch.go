package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"igloader/pkg/instagram"
	"igloader/pkg/target"
)

var (
	fetchOutputDir    string
	fetchAccount      string
	fetchPosts        bool
	fetchStories      bool
	fetchHighlights   bool
	fetchProfilePic   bool
	fetchSince        string
	fetchUntil        string
	fetchMaxPosts     int
	fetchForceRestart bool
)

// fetchCmd downloads a profile's media.
var fetchCmd = &cobra.Command{
	Use:   "fetch <username>",
	Short: "Download media from a profile",
	Long: `Download a profile's posts, stories, highlights and profile picture.

By default every content kind is fetched. Use the content flags to
narrow the selection, and --since/--until (YYYY-MM-DD) to bound items
by date. Progress is checkpointed per username; re-running the same
command resumes where the previous run stopped.`,
	Example: `  # Everything from a profile
  igloader fetch natgeo

  # Posts only, capped at 50, newest within a date window
  igloader fetch natgeo --stories=false --highlights=false --profile-pic=false \
    --max-posts 50 --since 2026-01-01 --until 2026-06-30

  # Ignore the previous run's checkpoint
  igloader fetch natgeo --force-restart`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOutputDir, "output", "o", "", "output directory (default from config)")
	fetchCmd.Flags().StringVarP(&fetchAccount, "account", "a", "", "use a specific stored account")
	fetchCmd.Flags().BoolVar(&fetchPosts, "posts", true, "download timeline posts")
	fetchCmd.Flags().BoolVar(&fetchStories, "stories", true, "download current stories")
	fetchCmd.Flags().BoolVar(&fetchHighlights, "highlights", true, "download highlight reels")
	fetchCmd.Flags().BoolVar(&fetchProfilePic, "profile-pic", true, "download the profile picture")
	fetchCmd.Flags().StringVar(&fetchSince, "since", "", "only items on or after this date (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchUntil, "until", "", "only items on or before this date (YYYY-MM-DD)")
	fetchCmd.Flags().IntVar(&fetchMaxPosts, "max-posts", 0, "stop after this many posts (0 = no limit)")
	fetchCmd.Flags().BoolVar(&fetchForceRestart, "force-restart", false, "ignore the existing checkpoint")
}

func runFetch(cmd *cobra.Command, args []string) error {
	username := instagram.SanitizeUsername(strings.TrimSpace(args[0]))
	if !instagram.IsValidUsername(username) {
		return fmt.Errorf("invalid username: %q", args[0])
	}

	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	if fetchOutputDir != "" {
		cfg.Output.BaseDirectory = fetchOutputDir
	}
	if fetchMaxPosts == 0 {
		fetchMaxPosts = cfg.Download.MaxPosts
	}

	dates, err := parseDateRange(fetchSince, fetchUntil)
	if err != nil {
		return err
	}

	account, err := resolveAccount(cfg, fetchAccount)
	if err != nil {
		return fmt.Errorf("no credentials available, run 'igloader auth login' first: %w", err)
	}

	root := target.Target{
		Kind:     target.KindProfile,
		Username: username,
		Content: target.ContentKinds{
			Posts:      fetchPosts,
			Stories:    fetchStories,
			Highlights: fetchHighlights,
			ProfilePic: fetchProfilePic,
		},
		Dates:    dates,
		MaxPosts: fetchMaxPosts,
	}

	return runSession(cfg, account, []target.Target{root}, username, fetchForceRestart)
}

// parseDateRange builds a whole-day range from YYYY-MM-DD bounds.
func parseDateRange(since, until string) (target.DateRange, error) {
	var s, u time.Time
	var err error

	if since != "" {
		s, err = time.Parse("2006-01-02", since)
		if err != nil {
			return target.DateRange{}, fmt.Errorf("invalid --since date %q: %w", since, err)
		}
	}
	if until != "" {
		u, err = time.Parse("2006-01-02", until)
		if err != nil {
			return target.DateRange{}, fmt.Errorf("invalid --until date %q: %w", until, err)
		}
	}
	if since == "" && until == "" {
		return target.DateRange{}, nil
	}
	if since != "" && until != "" && u.Before(s) {
		return target.DateRange{}, fmt.Errorf("--until %s is before --since %s", until, since)
	}
	if since == "" {
		s = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if until == "" {
		u = time.Now()
	}
	return target.NewDateRange(s, u), nil
}
