package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
)

const (
	formatJSON  = "json"
	formatTable = "table"
	formatArrow = "arrow"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatTable, formatArrow:
		return nil
	default:
		return fmt.Errorf(`invalid value %q for flag "--format"`, format)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResultSet(w io.Writer, format string, rs *dbsql.ResultSet) error {
	switch format {
	case formatArrow:
		return rs.WriteArrowIPC(w)
	case formatTable:
		renderTable(w, rs)
		if rs.Truncated {
			_, err := fmt.Fprintf(w, "Showing %d of %d rows\n", len(rs.Rows()), rs.TotalRows)
			return err
		}
		return nil
	default:
		return printJSON(w, rs.Rows())
	}
}

func renderTable(w io.Writer, rs *dbsql.ResultSet) {
	header := make([]string, 0, len(rs.Schema))
	for _, f := range rs.Schema {
		header = append(header, f.Name)
	}

	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	for _, row := range rs.Rows() {
		data := make([]string, 0, len(row))
		for _, col := range row {
			if col == nil {
				data = append(data, "NULL")
				continue
			}
			data = append(data, *col)
		}
		table.Append(data)
	}

	table.Render()
}
