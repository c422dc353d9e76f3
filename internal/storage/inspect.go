package storage

import (
	"context"
	"fmt"
	"strings"
)

type TableInfo struct {
	Name string
	Rows int64
}

type ColumnInfo struct {
	CID     int
	Name    string
	Type    string
	NotNull bool
	Default string
	PK      bool
}

// TableDump holds the first rows of a table. Values are strings, numbers, times or nil.
type TableDump struct {
	Table   string
	Columns []string
	Rows    [][]interface{}
}

// ConnectReadOnly opens an existing store for inspection only. The file is never created or written and
// no schema is applied, so the store is usable right away.
func (s *Storage) ConnectReadOnly(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: storage path is required", ErrStorageUnavailable)
	}
	return s.open(path, readOnlyDSN(path), stateReady)
}

// Tables lists every table in the store with its row count.
func (s *Storage) Tables(ctx context.Context) ([]*TableInfo, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]*TableInfo, 0, len(names))
	for _, name := range names {
		t := &TableInfo{Name: name}
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+quoteIdent(name)).Scan(&t.Rows); err != nil {
			return nil, fmt.Errorf("%w: count %s: %w", ErrQuery, name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// DescribeTable returns the column layout of a table.
func (s *Storage) DescribeTable(ctx context.Context, table string) ([]*ColumnInfo, error) {
	if err := s.checkTable(ctx, table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: describe %s: %w", ErrQuery, table, err)
	}
	defer rows.Close()

	var cols []*ColumnInfo
	for rows.Next() {
		c := &ColumnInfo{}
		var def interface{}
		var notNull, pk int
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &notNull, &def, &pk); err != nil {
			return nil, fmt.Errorf("%w: describe %s: %w", ErrQuery, table, err)
		}
		c.NotNull, c.PK = notNull != 0, pk != 0
		if def != nil {
			c.Default = fmt.Sprint(normalizeValue(def))
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// DumpTable returns up to limit rows of a table in storage order.
func (s *Storage) DumpTable(ctx context.Context, table string, limit int) (*TableDump, error) {
	if err := s.checkTable(ctx, table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT * FROM `+quoteIdent(table)+` LIMIT ?`, limitOrDefault(limit, 10))
	if err != nil {
		return nil, fmt.Errorf("%w: dump %s: %w", ErrQuery, table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: dump %s: %w", ErrQuery, table, err)
	}
	dump := &TableDump{Table: table, Columns: cols}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: dump %s: %w", ErrQuery, table, err)
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		dump.Rows = append(dump.Rows, vals)
	}
	return dump, rows.Err()
}

func (s *Storage) tableNames(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: list tables: %w", ErrQuery, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: list tables: %w", ErrQuery, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// checkTable only lets through names that exist in the catalog, which is what makes quoting them into
// statements safe.
func (s *Storage) checkTable(ctx context.Context, table string) error {
	names, err := s.tableNames(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == table {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
