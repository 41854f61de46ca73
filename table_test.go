package dbsql_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
)

func TestTableIdentifier(t *testing.T) {
	c := dbsql.NewClient(&dbsql.Config{})

	require.Equal(t, "`transactions`", c.Table("transactions").Identifier())
	require.Equal(t, "`b2b`.`transactions`", c.Table("b2b.transactions").Identifier())
	require.Equal(t, "`kaushal`.`b2b`.`transactions`", c.Table("kaushal.b2b.transactions").Identifier())

	tbl := c.Table("odd`name")
	require.Equal(t, "odd`name", tbl.Table)
	require.Equal(t, "`odd``name`", tbl.Identifier())
}

func TestTableDescribe(t *testing.T) {
	fw := newFakeWarehouse(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"statement_id": "01ef0000-0000-1000-8000-000000000020",
			"status":       map[string]any{"state": "SUCCEEDED"},
			"manifest": map[string]any{
				"schema": map[string]any{
					"columns": []any{
						map[string]any{"name": "col_name", "type_name": "STRING"},
						map[string]any{"name": "data_type", "type_name": "STRING"},
						map[string]any{"name": "comment", "type_name": "STRING"},
					},
				},
			},
			"result": map[string]any{
				"data_array": [][]any{{"txn_id", "bigint", nil}},
			},
		})
	})

	tbl := fw.Client("abc").Table("kaushal.b2b.transactions")
	rs, err := tbl.Describe(context.Background())
	require.NoError(t, err)
	require.Equal(t, [][]*string{{ptr("txn_id"), ptr("bigint"), nil}}, rs.Rows())

	var body dbsql.StatementRequest
	require.NoError(t, json.Unmarshal(fw.Requests()[0].Body, &body))
	require.Equal(t, "DESCRIBE TABLE `kaushal`.`b2b`.`transactions`", body.Statement)
	require.Equal(t, 1000, body.RowLimit)
}
