package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagKind string

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List indexed definitions",
	Args:  cobra.NoArgs,
	RunE:  runLs,
}

func init() {
	lsCmd.Flags().StringVar(&flagKind, "kind", "", "filter by kind: struct|enum")
}

func runLs(cmd *cobra.Command, args []string) error {
	switch flagKind {
	case "", "struct", "enum":
	default:
		return fmt.Errorf("invalid kind %q (want struct or enum)", flagKind)
	}

	engine, err := openEngine(".")
	if err != nil {
		return err
	}
	defer engine.Close()

	defs, err := engine.Query().Defs(flagKind)
	if err != nil {
		return fmt.Errorf("listing definitions: %w", err)
	}

	if flagFormat == "json" {
		type entry struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		}
		entries := make([]entry, 0, len(defs))
		for _, d := range defs {
			name := d.Name
			if !d.HasName {
				name = "(anonymous)"
			}
			entries = append(entries, entry{Name: name, Kind: d.Kind})
		}
		b, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal definitions: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(b))
		return nil
	}

	for _, d := range defs {
		name := d.Name
		if !d.HasName {
			name = "(anonymous)"
		}
		fmt.Fprintf(os.Stdout, "%-8s %s\n", d.Kind, name)
	}
	return nil
}
