/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/byteparser/pkg/codec"
	"github.com/ssargent/byteparser/pkg/schema"
	"github.com/ssargent/byteparser/pkg/storage"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Store and retrieve binary records",
	Long: `Store binary records in the archive under <data-dir>/archive. Every
stored record gets a KSUID. Records of one type list in id order, which
follows the time they were stored to the second.`,
}

var archivePutCmd = &cobra.Command{
	Use:   "put <record> [file]",
	Short: "Store every record read from a binary file or stdin",
	Args:  cobra.RangeArgs(1, 2),
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

		arc, err := a.openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		n, err := archiveStream(arc, s, in, cmd.OutOrStdout())
		a.logger.Info("archived records", "record", s.Name(), "count", n)
		return err
	},
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <record> <id>",
	Short: "Print a stored record as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		s, err := a.schema(args[0])
		if err != nil {
			return err
		}
		id, err := ksuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid record id %q: %w", args[1], err)
		}

		arc, err := a.openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		rec, err := arc.Get(s, id)
		if err != nil {
			return err
		}

		if raw, _ := cmd.Flags().GetBool("binary"); raw {
			return s.Write(cmd.OutOrStdout(), rec)
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list <record>",
	Short: "List stored records of one type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		s, err := a.schema(args[0])
		if err != nil {
			return err
		}

		arc, err := a.openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		return listArchive(arc, s, cmd.OutOrStdout())
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <record> <id>...",
	Short: "Delete stored records",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		s, err := a.schema(args[0])
		if err != nil {
			return err
		}

		ids := make([]ksuid.KSUID, 0, len(args)-1)
		for _, arg := range args[1:] {
			id, err := ksuid.Parse(arg)
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", arg, err)
			}
			ids = append(ids, id)
		}

		arc, err := a.openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		for _, id := range ids {
			if err := arc.Delete(s, id); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", id)
		}
		return nil
	},
}

var archiveFindCmd = &cobra.Command{
	Use:   "find <record> <field> <value> [max]",
	Short: "Find stored records by field value",
	Long: `Find stored records whose field equals value, or lies between value
and max inclusive when max is given. Matching records are listed as a
table.

Examples:
	  bparse archive find header name demo
	  bparse archive find entry id 100 200`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		s, err := a.schema(args[0])
		if err != nil {
			return err
		}
		f, ok := s.Field(args[1])
		if !ok {
			return fmt.Errorf("%w: %s.%s", storage.ErrUnknownField, s.Name(), args[1])
		}
		lo := lookupValue(f, args[2])
		hi := lo
		if len(args) > 3 {
			hi = lookupValue(f, args[3])
		}

		arc, err := a.openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		ids, err := arc.FindRange(s, f.Name, lo, hi)
		if err != nil {
			return err
		}
		a.logger.Debug("index lookup", "record", s.Name(), "field", f.Name, "matches", len(ids))
		return listRecords(arc, s, ids, cmd.OutOrStdout())
	},
}

// lookupValue parses a command line value for comparison with field f
func lookupValue(f schema.Field, arg string) any {
	switch f.Codec.Kind() {
	case codec.KindString, codec.KindCString, codec.KindFixedString:
		return arg
	}
	if i, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return u
	}
	return arg
}

// archiveStream stores every record of s read from r and prints one id
// per line to out
func archiveStream(arc *storage.Archive, s *schema.Schema, r io.Reader, out io.Writer) (int, error) {
	count := 0
	err := s.ReadAll(r, func(rec *schema.Record) error {
		id, err := arc.Put(s, rec)
		if err != nil {
			return err
		}
		count++
		_, err = fmt.Fprintln(out, id)
		return err
	})
	return count, err
}

// listArchive writes a table of the stored records of s
func listArchive(arc *storage.Archive, s *schema.Schema, out io.Writer) error {
	w := newRecordTable(out)
	err := arc.Scan(s, func(id ksuid.KSUID, rec *schema.Record) error {
		return writeRecordRow(w, id, rec)
	})
	if err != nil {
		return err
	}
	return w.Flush()
}

// listRecords writes a table of the records of s stored under ids
func listRecords(arc *storage.Archive, s *schema.Schema, ids []ksuid.KSUID, out io.Writer) error {
	w := newRecordTable(out)
	for _, id := range ids {
		rec, err := arc.Get(s, id)
		if err != nil {
			return err
		}
		if err := writeRecordRow(w, id, rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

func newRecordTable(out io.Writer) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTORED\tRECORD")
	return w
}

func writeRecordRow(w io.Writer, id ksuid.KSUID, rec *schema.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\t%s\n", id, id.Time().UTC().Format(time.RFC3339), data)
	return err
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archivePutCmd, archiveGetCmd, archiveListCmd, archiveFindCmd, archiveDeleteCmd)
	archiveGetCmd.Flags().Bool("binary", false, "Write the stored binary form instead of JSON")
}
