package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sweetyshop/internal/menu"
	"sweetyshop/internal/menusync"
)

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Send a menu batch to the server",
		Long: `Send a menu batch read from a JSON or YAML file ("-" reads stdin).

The file holds either a full document ({"menu": [...], ...}) or a bare list
of items. Without --action the server appends a non-empty batch and replaces
the menu with an empty one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(rootOpts, args[0], action, cmd)
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", "", "merge mode: init or append")

	return cmd
}

func runPush(opts *RootOptions, path, action string, cmd *cobra.Command) error {
	switch action {
	case "", menu.ActionInit, menu.ActionAppend:
	default:
		return fmt.Errorf("invalid action %q: must be init or append", action)
	}

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	doc, err := decodeDocument(path, data)
	if err != nil {
		return err
	}

	client, err := opts.client()
	if err != nil {
		return err
	}
	res, err := client.Push(cmd.Context(), doc, action)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (action=%s applied=%d total=%d sync=%s)\n", res.Message, res.Action, res.Applied, res.Total, res.SyncID)
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// decodeDocument accepts JSON or YAML, as a document or a bare item list,
// and checks it the same way the server will.
func decodeDocument(path string, data []byte) (menu.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return menu.Document{}, fmt.Errorf("parse %s: %w", path, err)
		}
		converted, err := json.Marshal(v)
		if err != nil {
			return menu.Document{}, fmt.Errorf("parse %s: %w", path, err)
		}
		data = converted
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		data = append(append([]byte(`{"`+menu.ItemsKey+`":`), trimmed...), '}')
	}

	doc, err := menusync.ParseBody(data)
	if err != nil {
		return menu.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
