/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <record> [file]",
	Short: "Decode binary records to JSON lines",
	Long: `Decode consecutive binary records from a file, or stdin, and print
one JSON object per record. Keys follow the declared field order.

Examples:
	  bparse decode header input.bin
	  cat input.bin | bparse decode entry --output=entries.jsonl`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		s, err := a.schema(args[0])
		if err != nil {
			return err
		}

		var path string
		if len(args) > 1 {
			path = args[1]
		}
		in, err := openInput(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer in.Close()

		outPath, _ := cmd.Flags().GetString("output")
		out, err := openOutput(outPath, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer out.Close()

		n, err := decodeStream(s, in, out, a.metrics)
		a.logger.Info("decoded records", "record", s.Name(), "count", n)
		return err
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringP("output", "o", "", "Write JSON lines to this file instead of stdout")
}
