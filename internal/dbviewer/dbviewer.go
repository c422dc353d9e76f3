package dbviewer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/table"
	"github.com/mitchellh/cli"

	"github.com/revampbot/revampbot/internal/storage"
)

const (
	DefaultRows  = 10
	maxCellWidth = 40
)

// Viewer prints the contents of a store. open is called once per command so every command sees the file
// as it is on disk right now.
type Viewer struct {
	Out  io.Writer
	Path string
	Open func(path string) (*storage.Storage, error)
}

func StaticFactory(c cli.Command) cli.CommandFactory {
	return func() (cli.Command, error) {
		return c, nil
	}
}

func (v *Viewer) Commands() map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"tables": StaticFactory(&TablesCommand{v}),
		"schema": StaticFactory(&SchemaCommand{v}),
		"data":   StaticFactory(&DataCommand{v}),
	}
}

func (v *Viewer) withStorage(fn func(ctx context.Context, s *storage.Storage) error) int {
	s, err := v.Open(v.Path)
	if err != nil {
		fmt.Fprintln(v.Out, "Error: ", err)
		return 1
	}
	defer s.Close()

	if err := fn(context.Background(), s); err != nil {
		fmt.Fprintln(v.Out, "Error: ", err)
		return 1
	}
	return 0
}

func cell(val interface{}) string {
	var s string
	switch x := val.(type) {
	case nil:
		return "NULL"
	case time.Time:
		s = x.UTC().Format("2006-01-02 15:04:05")
	case []byte:
		s = string(x)
	default:
		s = fmt.Sprint(x)
	}
	r := []rune(s)
	if len(r) > maxCellWidth {
		return string(r[:maxCellWidth-1]) + "…"
	}
	return s
}

type TablesCommand struct {
	v *Viewer
}

func (c *TablesCommand) Help() string {
	return "usage: tables\n\n" + c.Synopsis()
}

func (c *TablesCommand) Run(_ []string) int {
	return c.v.withStorage(func(ctx context.Context, s *storage.Storage) error {
		tables, err := s.Tables(ctx)
		if err != nil {
			return err
		}
		tb := table.NewWriter()
		tb.AppendHeader(table.Row{"table", "rows"})
		for _, t := range tables {
			tb.AppendRow(table.Row{t.Name, t.Rows})
		}
		fmt.Fprintf(c.v.Out, "Database: %s\nTotal tables: %d\n", c.v.Path, len(tables))
		fmt.Fprintln(c.v.Out, tb.Render())
		return nil
	})
}

func (c *TablesCommand) Synopsis() string {
	return "list all tables with their row counts"
}

type SchemaCommand struct {
	v *Viewer
}

func (c *SchemaCommand) Help() string {
	return "usage: schema <table>\n\n" + c.Synopsis()
}

func (c *SchemaCommand) Run(args []string) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(c.v.Out, "usage: schema <table>")
		return 1
	}
	return c.v.withStorage(func(ctx context.Context, s *storage.Storage) error {
		cols, err := s.DescribeTable(ctx, args[0])
		if err != nil {
			return err
		}
		tb := table.NewWriter()
		tb.AppendHeader(table.Row{"column", "type", "not null", "default", "pk"})
		for _, col := range cols {
			def := col.Default
			if def == "" {
				def = "NULL"
			}
			tb.AppendRow(table.Row{col.Name, col.Type, col.NotNull, def, col.PK})
		}
		fmt.Fprintf(c.v.Out, "Table schema: %s\n", args[0])
		fmt.Fprintln(c.v.Out, tb.Render())
		return nil
	})
}

func (c *SchemaCommand) Synopsis() string {
	return "show the columns of a table"
}

type DataCommand struct {
	v *Viewer
}

func (c *DataCommand) Help() string {
	return "usage: data <table> [limit]\n\n" + c.Synopsis()
}

func (c *DataCommand) Run(args []string) int {
	if len(args) < 1 || len(args) > 2 || args[0] == "" {
		fmt.Fprintln(c.v.Out, "usage: data <table> [limit]")
		return 1
	}
	limit := DefaultRows
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			fmt.Fprintln(c.v.Out, "invalid limit: ", args[1])
			return 1
		}
		limit = n
	}

	return c.v.withStorage(func(ctx context.Context, s *storage.Storage) error {
		dump, err := s.DumpTable(ctx, args[0], limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.v.Out, "Table data: %s (showing %d rows)\n", dump.Table, len(dump.Rows))
		if len(dump.Rows) == 0 {
			fmt.Fprintln(c.v.Out, "No data in this table")
			return nil
		}

		tb := table.NewWriter()
		header := make(table.Row, len(dump.Columns))
		for i, col := range dump.Columns {
			header[i] = col
		}
		tb.AppendHeader(header)
		for _, r := range dump.Rows {
			row := make(table.Row, len(r))
			for i, val := range r {
				row[i] = cell(val)
			}
			tb.AppendRow(row)
		}
		fmt.Fprintln(c.v.Out, tb.Render())
		return nil
	})
}

func (c *DataCommand) Synopsis() string {
	return "show the first rows of a table, 10 unless a limit is given"
}
