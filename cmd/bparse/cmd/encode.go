/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode <record> [file]",
	Short: "Encode JSON objects as binary records",
	Long: `Encode a stream of JSON objects, from a file or stdin, as consecutive
binary records. Every declared field must be present; other keys are
ignored. Integers outside the range of their field are rejected.

Examples:
	  bparse encode header records.jsonl --output=out.bin
	  echo '{"magic":1179011410,"version":1,"name":"demo"}' | bparse encode header > out.bin`,
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

		n, err := encodeStream(s, in, out, a.metrics)
		a.logger.Info("encoded records", "record", s.Name(), "count", n)
		return err
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringP("output", "o", "", "Write binary records to this file instead of stdout")
}
