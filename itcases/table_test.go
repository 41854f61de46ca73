/*
 * Copyright 2025 The mcp-databricks-sql Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package itcases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
)

func TestTableDescribe(t *testing.T) {
	c := NewClient(t)
	catalog, schema := Scratch(t)

	ctx := context.Background()
	tbl := c.Table(fmt.Sprintf("%s.%s.%s", catalog, schema, RandomName(t)))
	_, err := c.Statement(fmt.Sprintf(`
		CREATE TABLE %s (
			i INT,
			f DOUBLE,
			s STRING,
			b BOOLEAN,
			ts TIMESTAMP
		)
	`, tbl.Identifier())).Execute(ctx)
	require.NoError(t, err)
	defer func() {
		_, err := c.Statement("DROP TABLE IF EXISTS " + tbl.Identifier()).Execute(ctx)
		require.NoError(t, err)
	}()

	rs, err := tbl.Describe(ctx)
	require.NoError(t, err)

	var columns []string
	for _, row := range rs.Rows() {
		require.NotNil(t, row[0])
		columns = append(columns, *row[0])
	}
	require.Subset(t, columns, []string{"i", "f", "s", "b", "ts"})
}

func TestStatementValues(t *testing.T) {
	c := NewClient(t)
	ctx := context.Background()

	handle, err := c.Statement("SELECT CAST(1 AS INT) AS i, CAST(1.5 AS DOUBLE) AS f, 'x' AS s, true AS b").Submit(ctx)
	require.NoError(t, err)
	rs, err := handle.Fetch(ctx)
	require.NoError(t, err)

	values, err := rs.ToValues()
	require.NoError(t, err)
	require.Equal(t, [][]dbsql.Value{{int64(1), 1.5, "x", true}}, values)
}
