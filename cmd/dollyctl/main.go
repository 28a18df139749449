package main

import (
	"fmt"
	"os"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "dollyctl"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root command starts the
// controller, the same as "dollyctl run".
func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:     AppName,
		Short:   "Drive the VRChat dolly camera over OSC",
		Version: fmt.Sprintf("%s (built %s)", CurrentVersion, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(configDir); err != nil {
				// defaults are already registered
				cmd.PrintErrf("Failed to load config, using defaults: %v\n", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configDir, "config", ".", "directory containing "+config.FileName)
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("storage", "json", "pin storage backend (json, sqlite, postgres)")
	_ = viper.BindPFlag("logLevel", flags.Lookup("log-level"))
	_ = viper.BindPFlag("storage.type", flags.Lookup("storage"))

	runCmd := newRunCmd()
	root.RunE = runCmd.RunE
	root.Flags().AddFlagSet(runCmd.Flags())

	root.AddCommand(runCmd, newGenerateCmd(), newPinsCmd())
	return root
}
