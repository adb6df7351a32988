package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/store"
)

// parseBinding checks that name is a gesture that taps a key and that key is
// a key the input layer can press.
func parseBinding(name, key string) (gesture.Label, control.Key, error) {
	label, err := gesture.ParseLabel(name)
	if err != nil {
		return "", "", err
	}
	if !label.OneShot() {
		return "", "", fmt.Errorf("%s has a fixed action and cannot be bound", label)
	}
	if key == "" {
		return label, "", nil
	}
	k, err := input.ParseKey(key)
	if err != nil {
		return "", "", err
	}
	return label, k, nil
}

func newBindCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bind <gesture> <key>",
		Short: "Save the key a gesture taps",
		Long: `Save the key tapped by thumbs_up, two_fingers, pointing or five_fingers.
Saved bindings override config.yaml and apply on the next start, or
immediately through the status API.`,
		Example: "  mudra bind thumbs_up space\n  mudra bind pointing f",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, key, err := parseBinding(args[0], args[1])
			if err != nil {
				return err
			}

			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Bindings().Set(string(label), string(key)); err != nil {
				return fmt.Errorf("save binding: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now taps %s\n", label, color.CyanString(string(key)))
			return nil
		},
	}
}

func newUnbindCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "unbind <gesture>",
		Short: "Remove a saved binding and fall back to the configured key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, _, err := parseBinding(args[0], "")
			if err != nil {
				return err
			}

			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Bindings().Delete(string(label)); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no saved binding for %s", label)
				}
				return fmt.Errorf("delete binding: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s taps %s again\n", label, color.CyanString(c.cfg.Bindings[label]))
			return nil
		},
	}
}

func newBindingsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "List the key each gesture taps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			saved, err := st.Bindings().Map()
			if err != nil {
				return fmt.Errorf("load bindings: %w", err)
			}
			return printBindings(cmd.OutOrStdout(), c.cfg.Bindings, saved)
		},
	}
}

func printBindings(out io.Writer, configured map[gesture.Label]string, saved map[string]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GESTURE\tKEY\tSOURCE")
	for _, label := range gesture.ActionLabels() {
		key, source := configured[label], color.New(color.Faint).Sprint("config")
		if s, ok := saved[string(label)]; ok {
			key, source = s, color.GreenString("saved")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", label, key, source)
	}
	fmt.Fprintln(w, "open_hand\tw/a/s/d\tfixed")
	fmt.Fprintln(w, "fist\tleft mouse\tfixed")
	return w.Flush()
}
