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
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResultFormat defines the format of the result set.
type ResultFormat string

const (
	// ResultFormatJSONArray returns rows as a JSON array of arrays of strings.
	ResultFormatJSONArray ResultFormat = "JSON_ARRAY"
)

// Disposition defines where the result set is delivered.
type Disposition string

const (
	// DispositionInline returns the result set in the response body.
	DispositionInline Disposition = "INLINE"
)

const (
	// DefaultRowLimit is the row limit applied when a statement does not set one.
	DefaultRowLimit = 10
	// WaitTimeout is the server-side wait sent with every statement.
	WaitTimeout = "10s"
)

// Statement is a struct that represents a statement to be executed on a SQL warehouse.
type Statement struct {
	c *Client

	stmt string

	// WarehouseID is the warehouse to execute on. Defaults to Config.WarehouseID.
	WarehouseID string
	// Catalog is the optional default catalog.
	Catalog string
	// Schema is the optional default schema within Catalog.
	Schema string
	// Parameters are optional named parameters for parameterized SQL.
	Parameters map[string]any
	// RowLimit is the maximum number of rows to return.
	RowLimit int
}

// Statement creates a new statement with the given SQL text.
func (c *Client) Statement(stmt string) *Statement {
	return &Statement{
		c:           c,
		stmt:        stmt,
		WarehouseID: c.config.WarehouseID,
		RowLimit:    DefaultRowLimit,
	}
}

// Request builds the request body for the statement.
func (s *Statement) Request() *StatementRequest {
	req := &StatementRequest{
		Statement:   s.stmt,
		WarehouseID: s.WarehouseID,
		WaitTimeout: WaitTimeout,
		Format:      ResultFormatJSONArray,
		Disposition: DispositionInline,
		RowLimit:    s.RowLimit,
		Catalog:     s.Catalog,
		Schema:      s.Schema,
	}
	if len(s.Parameters) > 0 {
		req.Parameters = s.Parameters
	}
	return req
}

// Execute submits the statement and returns the decoded response body unmodified.
//
// The body is returned whatever the HTTP status, so service errors arrive as
// the error object the workspace sent. An *Error is returned only when a
// non-2xx body is not a JSON object.
func (s *Statement) Execute(ctx context.Context) (map[string]any, error) {
	if s.WarehouseID == "" {
		return nil, ErrMissingWarehouseID
	}

	code, data, err := s.c.submitStatement(ctx, s.Request())
	if err != nil {
		return nil, err
	}
	body, err := decodeRaw(data)
	if err != nil && !statusOK(code) {
		return nil, statusError(code, data)
	}
	return body, err
}

// Submit submits the statement and returns a handle carrying the typed response.
func (s *Statement) Submit(ctx context.Context) (*StatementHandle, error) {
	if s.WarehouseID == "" {
		return nil, ErrMissingWarehouseID
	}

	code, data, err := s.c.submitStatement(ctx, s.Request())
	if err != nil {
		return nil, err
	}
	if !statusOK(code) {
		return nil, statusError(code, data)
	}
	var resp StatementResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(resp.StatementID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatementID, resp.StatementID)
	}

	return &StatementHandle{
		c:    s.c,
		resp: &resp,
		id:   id,
	}, nil
}

// StatementHandle is a handle to a statement that has been submitted.
type StatementHandle struct {
	c    *Client
	resp *StatementResponse

	id uuid.UUID
}

// StatementHandle creates a new StatementHandle with the given ID.
func (c *Client) StatementHandle(id string) (*StatementHandle, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatementID, id)
	}
	return &StatementHandle{
		c:  c,
		id: parsed,
	}, nil
}

// ID returns the statement ID.
func (h *StatementHandle) ID() string {
	return h.id.String()
}

// Response returns the last seen response of the statement, or nil if none was fetched yet.
func (h *StatementHandle) Response() *StatementResponse {
	return h.resp
}

// State returns the last seen state of the statement.
func (h *StatementHandle) State() StatementState {
	if h.resp == nil {
		return ""
	}
	return h.resp.Status.State
}

// FetchOnce fetches the state of the statement once.
//
// If the last seen state is terminal, no fetch is performed.
func (h *StatementHandle) FetchOnce(ctx context.Context) error {
	if h.resp != nil && h.resp.Status.State.Terminated() {
		return nil
	}

	resp, err := h.c.fetchStatementResult(ctx, h.id)
	if resp != nil && err == nil {
		h.resp = resp
	}
	return err
}

// Fetch polls the statement until it succeeds, fails, or is canceled.
//
// When the statement succeeds, its result set is returned. Otherwise, an error is returned.
func (h *StatementHandle) Fetch(ctx context.Context) (*ResultSet, error) {
	tick := 5 * time.Millisecond
	maxTick := 1 * time.Second

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		if h.resp != nil && h.resp.Status.State.Terminated() {
			return h.resp.ResultSet()
		}

		if tick < maxTick {
			tick = min(tick*2, maxTick)
			ticker.Reset(tick)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if err := h.FetchOnce(ctx); err != nil {
				return nil, err
			}
		}
	}
}

// Cancel cancels the statement if it is pending or running.
func (h *StatementHandle) Cancel(ctx context.Context) error {
	if h.resp != nil && h.resp.Status.State.Terminated() {
		return nil
	}
	return h.c.cancelStatement(ctx, h.id)
}

// StatementState is a string that represents the state of a statement.
type StatementState string

const (
	// StatementStatePending indicates the statement is waiting for warehouse capacity.
	StatementStatePending StatementState = "PENDING"
	// StatementStateRunning indicates the statement is executing.
	StatementStateRunning StatementState = "RUNNING"
	// StatementStateSucceeded indicates the statement finished and the result is available.
	StatementStateSucceeded StatementState = "SUCCEEDED"
	// StatementStateFailed indicates the statement failed.
	StatementStateFailed StatementState = "FAILED"
	// StatementStateCanceled indicates the statement was canceled.
	StatementStateCanceled StatementState = "CANCELED"
	// StatementStateClosed indicates the statement succeeded but its result was closed.
	StatementStateClosed StatementState = "CLOSED"
)

// Succeeded returns true if the statement has succeeded.
func (s StatementState) Succeeded() bool {
	return s == StatementStateSucceeded
}

// Terminated returns true if the statement will not change state anymore.
func (s StatementState) Terminated() bool {
	switch s {
	case StatementStateSucceeded, StatementStateFailed, StatementStateCanceled, StatementStateClosed:
		return true
	case StatementStatePending, StatementStateRunning:
		return false
	default:
		return false
	}
}

// StatementResponse is the typed view of a statement execution response.
type StatementResponse struct {
	StatementID string          `json:"statement_id"`
	Status      StatementStatus `json:"status"`
	Manifest    *ResultManifest `json:"manifest,omitempty"`
	Result      *ResultData     `json:"result,omitempty"`
}

// StatementStatus carries the state of a statement and its error when it failed.
type StatementStatus struct {
	State StatementState `json:"state"`
	Error *ServiceError  `json:"error,omitempty"`
}

// ServiceError is the error reported for a failed statement.
type ServiceError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Message)
}

// ResultManifest describes the shape of a result set.
type ResultManifest struct {
	Format          ResultFormat `json:"format"`
	Schema          ResultSchema `json:"schema"`
	TotalChunkCount int64        `json:"total_chunk_count"`
	TotalRowCount   int64        `json:"total_row_count"`
	Truncated       bool         `json:"truncated"`
}

// ResultSchema lists the columns of a result set.
type ResultSchema struct {
	ColumnCount int           `json:"column_count"`
	Columns     []*ColumnInfo `json:"columns"`
}

// ColumnInfo describes a single result column.
type ColumnInfo struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	TypeName DataType `json:"type_name"`
	TypeText string   `json:"type_text"`
}

// ResultData is one inline chunk of a result set.
type ResultData struct {
	ChunkIndex int64       `json:"chunk_index"`
	RowOffset  int64       `json:"row_offset"`
	RowCount   int64       `json:"row_count"`
	DataArray  [][]*string `json:"data_array"`
}
