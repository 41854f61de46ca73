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

package dbsql

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Value stores the contents of a single cell from a statement result.
type Value any

// ResultSet stores the result of a succeeded statement.
type ResultSet struct {
	// StatementID is the ID of the statement that produced the result.
	StatementID string
	// TotalRows is the total number of rows produced by the statement.
	TotalRows int64
	// Truncated is true when the row limit cut the result short.
	Truncated bool
	// Schema is the schema of the result set.
	Schema Schema

	rows [][]*string
}

// ResultSet returns the result set of a succeeded statement.
//
// A failed statement returns its service error; a statement in any other
// state returns an error naming that state.
func (r *StatementResponse) ResultSet() (*ResultSet, error) {
	switch r.Status.State {
	case StatementStateSucceeded:
	case StatementStateFailed:
		if r.Status.Error != nil {
			return nil, r.Status.Error
		}
		return nil, errors.New("statement failed")
	default:
		return nil, fmt.Errorf("statement is %s", r.Status.State)
	}

	rs := &ResultSet{StatementID: r.StatementID}
	if r.Manifest != nil {
		rs.TotalRows = r.Manifest.TotalRowCount
		rs.Truncated = r.Manifest.Truncated
		for _, col := range r.Manifest.Schema.Columns {
			rs.Schema = append(rs.Schema, &FieldSchema{Name: col.Name, Type: col.TypeName})
		}
	}
	if r.Result != nil {
		rs.rows = r.Result.DataArray
	}
	return rs, nil
}

// Rows returns the rows as returned by the server: one string per cell, nil for NULL.
func (rs *ResultSet) Rows() [][]*string {
	return rs.rows
}

// ToValues reads the result set and returns the rows as a 2D array of values,
// i.e., rows of value lists, converted according to the column types.
func (rs *ResultSet) ToValues() ([][]Value, error) {
	var valueLists [][]Value
	for _, r := range rs.rows {
		if len(r) != len(rs.Schema) {
			return nil, errors.New("schema length does not match record length")
		}

		values := make([]Value, 0, len(r))
		for i, v := range r {
			if v == nil {
				values = append(values, nil)
				continue
			}
			val, err := convertValue(*v, rs.Schema[i].Type)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", rs.Schema[i].Name, err)
			}
			values = append(values, val)
		}
		valueLists = append(valueLists, values)
	}
	return valueLists, nil
}

func convertValue(v string, typ DataType) (Value, error) {
	switch typ {
	case ByteDataType, ShortDataType, IntDataType, LongDataType:
		return strconv.ParseInt(v, 10, 64)
	case FloatDataType, DoubleDataType:
		return strconv.ParseFloat(v, 64)
	case BooleanDataType:
		return strconv.ParseBool(v)
	case DateDataType:
		return time.Parse(time.DateOnly, v)
	case TimestampDataType:
		return time.Parse(time.RFC3339Nano, v)
	default:
		// DECIMAL, STRING, BINARY, INTERVAL and complex types stay textual.
		return v, nil
	}
}

// Schema describes the fields in a table or query result.
type Schema []*FieldSchema

// FieldSchema describes a single field.
type FieldSchema struct {
	// Name is the field name.
	Name string
	// Type is the field data type.
	Type DataType
}

// DataType is the type_name of a result column.
type DataType string

const (
	BooleanDataType   DataType = "BOOLEAN"
	ByteDataType      DataType = "BYTE"
	ShortDataType     DataType = "SHORT"
	IntDataType       DataType = "INT"
	LongDataType      DataType = "LONG"
	FloatDataType     DataType = "FLOAT"
	DoubleDataType    DataType = "DOUBLE"
	DecimalDataType   DataType = "DECIMAL"
	StringDataType    DataType = "STRING"
	DateDataType      DataType = "DATE"
	TimestampDataType DataType = "TIMESTAMP"
	BinaryDataType    DataType = "BINARY"
)
