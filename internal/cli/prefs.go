package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstudio/internal/payload"
	"github.com/cristianadrielbraun/qrstudio/internal/prefs"
	"github.com/cristianadrielbraun/qrstudio/internal/render"
	"github.com/cristianadrielbraun/qrstudio/internal/server"
)

// withStore opens the preference store for the duration of fn.
func (c *CLI) withStore(cmd *cobra.Command, fn func(prefs.Store) error) error {
	store, err := server.OpenStore(cmd.Context(), c.cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) presetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved design presets",
	}
	cmd.AddCommand(c.presetListCommand())
	cmd.AddCommand(c.presetShowCommand())
	cmd.AddCommand(c.presetSaveCommand())
	cmd.AddCommand(c.presetDeleteCommand())
	return cmd
}

func (c *CLI) presetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store prefs.Store) error {
				all, err := store.Presets(cmd.Context(), cliScope)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(all))
				for name := range all {
					names = append(names, name)
				}
				sort.Strings(names)
				w := cmd.OutOrStdout()
				for _, name := range names {
					p := all[name]
					fmt.Fprintf(w, "%s\t%s\t%dpx\t%s\t%s/%s\n", name, p.Type, p.Size, p.ErrorCorrection, p.ForegroundColor, p.BackgroundColor)
				}
				return nil
			})
		},
	}
}

func (c *CLI) presetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a preset as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store prefs.Store) error {
				p, err := store.Preset(cmd.Context(), cliScope, args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			})
		},
	}
}

func (c *CLI) presetSaveCommand() *cobra.Command {
	var (
		df   designFlags
		kind string
	)
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save design flags as a preset, replacing any preset of that name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := prefs.CheckName(args[0])
			if err != nil {
				return err
			}
			t, err := payload.ParseType(kind)
			if err != nil {
				return err
			}
			opts, err := df.apply(cmd, render.DefaultOptions())
			if err != nil {
				return err
			}
			return c.withStore(cmd, func(store prefs.Store) error {
				if err := store.SavePreset(cmd.Context(), cliScope, name, prefs.NewPreset(t, opts)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Preset %q saved successfully!\n", name)
				return nil
			})
		},
	}
	df.bind(cmd, false)
	cmd.Flags().StringVarP(&kind, "type", "t", string(payload.TypeText), "payload type the preset is meant for")
	return cmd
}

func (c *CLI) presetDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store prefs.Store) error {
				return store.DeletePreset(cmd.Context(), cliScope, args[0])
			})
		},
	}
}

func (c *CLI) themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the saved UI theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store prefs.Store) error {
				t, err := store.Theme(cmd.Context(), cliScope)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set THEME",
		Short: "Set the theme (light or dark)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := prefs.ParseTheme(args[0])
			if err != nil {
				return err
			}
			return c.withStore(cmd, func(store prefs.Store) error {
				if err := store.SetTheme(cmd.Context(), cliScope, t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), t)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(store prefs.Store) error {
				t, err := store.Theme(cmd.Context(), cliScope)
				if err != nil {
					return err
				}
				t = t.Toggle()
				if err := store.SetTheme(cmd.Context(), cliScope, t); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), t)
				return nil
			})
		},
	})
	return cmd
}
