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

package dbsql_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/stretchr/testify/require"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
)

const transactionsResponse = `{
	"statement_id": "01ef0000-0000-1000-8000-000000000010",
	"status": {"state": "SUCCEEDED"},
	"manifest": {
		"format": "JSON_ARRAY",
		"schema": {
			"column_count": 5,
			"columns": [
				{"name": "txn_id", "type_name": "LONG", "type_text": "BIGINT", "position": 0},
				{"name": "customer_id", "type_name": "STRING", "type_text": "STRING", "position": 1},
				{"name": "amount", "type_name": "DOUBLE", "type_text": "DOUBLE", "position": 2},
				{"name": "settled", "type_name": "BOOLEAN", "type_text": "BOOLEAN", "position": 3},
				{"name": "txn_date", "type_name": "DATE", "type_text": "DATE", "position": 4}
			]
		},
		"total_row_count": 2,
		"truncated": true
	},
	"result": {
		"chunk_index": 0,
		"row_offset": 0,
		"row_count": 2,
		"data_array": [
			["9001", "C10001", "250.75", "true", "2024-05-01"],
			["9002", "C10001", null, "false", "2024-05-03"]
		]
	}
}`

func transactionsResultSet(t *testing.T) *dbsql.ResultSet {
	var resp dbsql.StatementResponse
	require.NoError(t, json.Unmarshal([]byte(transactionsResponse), &resp))
	rs, err := resp.ResultSet()
	require.NoError(t, err)
	return rs
}

func TestResultSetToValues(t *testing.T) {
	rs := transactionsResultSet(t)
	require.True(t, rs.Truncated)
	require.Len(t, rs.Schema, 5)
	require.Equal(t, dbsql.LongDataType, rs.Schema[0].Type)

	values, err := rs.ToValues()
	require.NoError(t, err)
	require.Equal(t, [][]dbsql.Value{
		{int64(9001), "C10001", 250.75, true, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{int64(9002), "C10001", nil, false, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)},
	}, values)
}

func TestResultSetSchemaMismatch(t *testing.T) {
	var resp dbsql.StatementResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"status": {"state": "SUCCEEDED"},
		"manifest": {"schema": {"columns": [{"name": "a", "type_name": "INT"}]}},
		"result": {"data_array": [["1", "2"]]}
	}`), &resp))
	rs, err := resp.ResultSet()
	require.NoError(t, err)

	_, err = rs.ToValues()
	require.Error(t, err)
	_, err = rs.ToArrowRecord()
	require.Error(t, err)
}

func TestResultSetNotSucceeded(t *testing.T) {
	resp := dbsql.StatementResponse{Status: dbsql.StatementStatus{State: dbsql.StatementStateCanceled}}
	_, err := resp.ResultSet()
	require.EqualError(t, err, "statement is CANCELED")

	resp.Status = dbsql.StatementStatus{
		State: dbsql.StatementStateFailed,
		Error: &dbsql.ServiceError{ErrorCode: "BAD_REQUEST", Message: "syntax error"},
	}
	_, err = resp.ResultSet()
	require.EqualError(t, err, "BAD_REQUEST: syntax error")
}

func TestStatementStateTerminated(t *testing.T) {
	for state, terminated := range map[dbsql.StatementState]bool{
		dbsql.StatementStatePending:   false,
		dbsql.StatementStateRunning:   false,
		dbsql.StatementStateSucceeded: true,
		dbsql.StatementStateFailed:    true,
		dbsql.StatementStateCanceled:  true,
		dbsql.StatementStateClosed:    true,
	} {
		require.Equal(t, terminated, state.Terminated(), state)
	}
	require.True(t, dbsql.StatementStateSucceeded.Succeeded())
	require.False(t, dbsql.StatementStateClosed.Succeeded())
}

func TestResultSetToArrowRecord(t *testing.T) {
	rs := transactionsResultSet(t)

	rec, err := rs.ToArrowRecord()
	require.NoError(t, err)
	defer rec.Release()

	require.EqualValues(t, 2, rec.NumRows())
	require.EqualValues(t, 5, rec.NumCols())
	require.Equal(t, arrow.PrimitiveTypes.Int64, rec.Schema().Field(0).Type)
	require.Equal(t, arrow.BinaryTypes.String, rec.Schema().Field(4).Type)

	ids := rec.Column(0).(*array.Int64)
	require.Equal(t, []int64{9001, 9002}, ids.Int64Values())
	amounts := rec.Column(2).(*array.Float64)
	require.Equal(t, 250.75, amounts.Value(0))
	require.True(t, amounts.IsNull(1))
	settled := rec.Column(3).(*array.Boolean)
	require.True(t, settled.Value(0))
	require.False(t, settled.Value(1))
}

func TestResultSetWriteArrowIPC(t *testing.T) {
	rs := transactionsResultSet(t)

	var buf bytes.Buffer
	require.NoError(t, rs.WriteArrowIPC(&buf))

	reader, err := ipc.NewReader(&buf)
	require.NoError(t, err)
	defer reader.Release()

	require.Equal(t, "customer_id", reader.Schema().Field(1).Name)
	require.True(t, reader.Next())
	rec := reader.Record()
	require.EqualValues(t, 2, rec.NumRows())
	require.Equal(t, "C10001", rec.Column(1).(*array.String).Value(1))
	require.False(t, reader.Next())
	require.NoError(t, reader.Err())
}
