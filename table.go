package dbsql

import (
	"context"
	"strings"
)

// describeRowLimit bounds DESCRIBE output, one row per column.
const describeRowLimit = 1000

type Table struct {
	c *Client

	// Catalog is the name of the catalog.
	//
	// This is optional and may be empty. When Catalog is not empty,
	// Schema must not be empty.
	Catalog string
	// Schema is the name of the schema.
	//
	// This is optional and may be empty.
	Schema string
	// Table is the name of the table.
	Table string
}

// Table returns a table reference. name may be qualified as "schema.table" or
// "catalog.schema.table"; unqualified parts fall back to the statement defaults.
func (c *Client) Table(name string) *Table {
	t := &Table{c: c}
	parts := strings.Split(name, ".")
	switch len(parts) {
	case 3:
		t.Catalog, t.Schema, t.Table = parts[0], parts[1], parts[2]
	case 2:
		t.Schema, t.Table = parts[0], parts[1]
	default:
		t.Table = name
	}
	return t
}

// Describe runs DESCRIBE TABLE and returns the result set.
func (t *Table) Describe(ctx context.Context) (*ResultSet, error) {
	s := t.c.Statement("DESCRIBE TABLE " + t.Identifier())
	s.RowLimit = describeRowLimit
	handle, err := s.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return handle.Fetch(ctx)
}

func (t *Table) Identifier() string {
	var b strings.Builder
	if t.Catalog != "" {
		b.WriteString(quoteIdent(t.Catalog))
		b.WriteByte('.')
	}
	if t.Schema != "" {
		b.WriteString(quoteIdent(t.Schema))
		b.WriteByte('.')
	}
	b.WriteString(quoteIdent(t.Table))
	return b.String()
}

// quoteIdent wraps s in backticks, doubling any backtick inside.
func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}
