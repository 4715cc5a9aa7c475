package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jward/sema"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the descriptor of an indexed struct or enum",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(".")
	if err != nil {
		return err
	}
	defer engine.Close()

	desc, err := engine.Query().Describe(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("describe %s: %w", args[0], err)
	}
	if desc == nil {
		return fmt.Errorf("type not found: %s", args[0])
	}

	out, err := renderDescription(desc, flagFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, out)
	return nil
}

// renderDescription formats a descriptor for output. JSON is the stable
// machine format; text is a compact human-readable rendering.
func renderDescription(desc *sema.TypeDescription, format string) (string, error) {
	if format == "json" {
		b, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal description: %w", err)
		}
		return string(b), nil
	}

	var b strings.Builder
	name := desc.Name
	if name == "" {
		name = "(anonymous)"
	}
	fmt.Fprintf(&b, "%s %s", desc.Kind, name)
	if desc.Kind == "struct" {
		fmt.Fprintf(&b, " [%s]\n", desc.Shape)
		writeFields(&b, "  ", desc.Fields)
	} else {
		fmt.Fprintf(&b, " (%d variants)\n", len(desc.Variants))
		for _, v := range desc.Variants {
			fmt.Fprintf(&b, "  %s [%s]\n", v.Name, v.Shape)
			writeFields(&b, "    ", v.Fields)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeFields(b *strings.Builder, indent string, fields []sema.FieldDescription) {
	for _, f := range fields {
		fmt.Fprintf(b, "%s%s: %s\n", indent, f.Name, f.Type)
	}
}
