package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// writeOutput sends primary data to the -o file when set, stdout otherwise.
// Diagnostics never travel through here.
func writeOutput(cmd *cobra.Command, outFile string, data []byte) error {
	if outFile == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outFile, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outFile, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outFile)
	return nil
}

func writeJSON(cmd *cobra.Command, outFile string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return writeOutput(cmd, outFile, append(raw, '\n'))
}
