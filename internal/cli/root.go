package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree bound to app. Without a
// subcommand the interactive menu runs.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "fcclipper",
		Short:         "Clip Food City digital coupons and read your Fuel Bucks balance.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runMenu(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&app.flags.disableHeadless, "disable-headless", false, "show the browser window")
	pf.BoolVarP(&app.flags.debug, "debug", "d", false, "enable debug logging")
	pf.StringVar(&app.flags.settingsPath, "settings", "", "settings file (default is settings.yaml in the config dir)")

	clip := &cobra.Command{
		Use:   "clip-coupons",
		Short: "Clip every available digital coupon to your card",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.clipCoupons(cmd.Context(), app.flags.dryRun)
		},
	}
	clip.Flags().BoolVar(&app.flags.dryRun, "dry-run", false, "find coupons without clipping them")

	balance := &cobra.Command{
		Use:   "get-fuel-bucks",
		Short: "Show the Fuel Bucks rewards balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fuelBucks(cmd.Context())
		},
	}

	clearCache := &cobra.Command{
		Use:   "clear-cache",
		Short: "Forget cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.clearCache()
		},
	}

	root.AddCommand(clip, balance, clearCache)
	return root
}
