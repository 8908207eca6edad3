/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/byteparser/pkg/codec"
	"github.com/ssargent/byteparser/pkg/schema"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe [record...]",
	Short: "Show the fields of declared records",
	Long: `Show the fields of declared records in declaration order, with each
field's codec and encoded size. Without arguments every record in the
declaration file is described.

Examples:
	  bparse describe
	  bparse describe header entry --schemas=./formats.hcl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		names := args
		if len(names) == 0 {
			cat, err := a.declarations()
			if err != nil {
				return err
			}
			names = cat.Names()
		}

		for i, name := range names {
			s, err := a.schema(name)
			if err != nil {
				return err
			}
			if i > 0 {
				cmd.Println()
			}
			if err := describeSchema(cmd.OutOrStdout(), s); err != nil {
				return err
			}
		}
		return nil
	},
}

// describeSchema writes a field table for s
func describeSchema(out io.Writer, s *schema.Schema) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Record:\t%s\n", s.Name())
	if size, err := s.StaticSize(); err == nil {
		fmt.Fprintf(w, "Size:\t%d bytes\n", size)
	} else if errors.Is(err, codec.ErrDynamicSize) {
		fmt.Fprintf(w, "Size:\tvariable\n")
	} else {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FIELD\tKIND\tCODEC\tSIZE")
	for _, f := range s.Fields() {
		size := "variable"
		if n, err := f.Codec.StaticSize(); err == nil {
			size = fmt.Sprintf("%d", n)
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", f.Name, f.Codec.Kind(), f.Codec, size)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
