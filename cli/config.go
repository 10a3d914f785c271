// ABOUTME: Config CLI commands
// ABOUTME: Writes a sample config file and validates an existing one
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/groupsync/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd, configValidateCmd)
	RootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	if err := config.WriteSample(path, configForce); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "✓ Wrote sample config to %s\n", path)
	_, _ = fmt.Fprintln(out, "Edit it, then run 'groupsync sync configure' to authorize Google.")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s is invalid:\n%w", path, err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Config %s is valid (%d list(s))\n", path, len(cfg.Lists))
	return nil
}
