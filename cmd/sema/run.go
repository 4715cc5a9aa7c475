package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script.risor>",
	Short: "Run a Risor analysis script against the index",
	Long:  "Executes a Risor script with descriptor query host functions: defs(), struct_data(name), enum_data(name), field_type(type, field), and log.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(".")
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.RunScript(context.Background(), args[0]); err != nil {
		return fmt.Errorf("running script: %w", err)
	}
	return nil
}
