package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/expml/internal/config"
	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/rileyhilliard/expml/internal/ui"
)

var (
	configInitForce  bool
	configInitGlobal bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or edit the expml config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Write the default settings to .expml.yaml in the current directory, or to
~/.config/expml/config.yaml with --global.

Examples:
  expml config init
  expml config init --global --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configInitPath(configInitGlobal)
		if err != nil {
			return err
		}
		if err := config.WriteDefault(path, configInitForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Set a dotted key in the config file in use, keeping the rest of the file
and its comments. The result must still validate or the file is left as it was.

Examples:
  expml config set refresh_interval 2s
  expml config set layout.sidebar_width 40
  expml config set display.glyphs blocks`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSet(cmd.OutOrStdout(), args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print which config file is in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(none, using defaults)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write the per-user config instead")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configInitPath(global bool) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if !global {
		return config.ConfigFileName, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot find home directory",
			"Use --config to choose where to write the file")
	}
	return filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile), nil
}

func configSet(out io.Writer, key, value string) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file to edit",
			"Run 'expml config init' first")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot read "+path, "Check file permissions")
	}
	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Cannot set %s", key),
			"Check the key path matches the config layout")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if restoreErr := os.WriteFile(path, original, 0o644); restoreErr != nil {
			debugLog.Error("restore %s: %v", path, restoreErr)
		}
		return err
	}

	fmt.Fprintf(out, "%s %s = %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, value)
	return nil
}
