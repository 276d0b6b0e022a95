package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewPullCommand creates the pull command.
func NewPullCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:           "pull",
		Short:         "Print the menu the storefront currently serves",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(rootOpts, format, cmd)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "json", "output format (json|yaml)")

	return cmd
}

func runPull(opts *RootOptions, format string, cmd *cobra.Command) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("invalid output %q: must be json or yaml", format)
	}

	client, err := opts.client()
	if err != nil {
		return err
	}
	doc, err := client.Fetch(cmd.Context())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if format == "yaml" {
		var v any
		if err := json.Unmarshal(out, &v); err != nil {
			return err
		}
		if out, err = yaml.Marshal(v); err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
