package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored NewsAPI key",
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key (prompts when no key is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Fprint(cmd.OutOrStdout(), "API key: ")
			if key, err = readLine(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("reading API key: %w", err)
			}
		}
		if key == "" {
			return fmt.Errorf("empty key, use 'key clear' to remove the stored one")
		}
		if err := cfg.SaveAPIKey(key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", cfg.Path())
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.SaveAPIKey(""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key cleared.")
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show where the API key comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case cfg.APIKey != "":
			fmt.Fprintf(out, "%s (from %s)\n", maskKey(cfg.APIKey), cfg.Path())
		case cfg.ResolvedAPIKey() != "":
			fmt.Fprintf(out, "%s (from environment)\n", maskKey(cfg.ResolvedAPIKey()))
		default:
			fmt.Fprintln(out, "No API key configured.")
		}
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyClearCmd, keyShowCmd)
}

// maskKey keeps the last four characters visible.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
