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
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
)

const statementsPath = "/api/2.0/sql/statements/"

// statementAPI defines interfaces under /api/2.0/sql/statements.
type statementAPI interface {
	// submitStatement submits a statement and returns the status code and raw
	// response body, whatever the status.
	submitStatement(ctx context.Context, req *StatementRequest) (int, []byte, error)
	// fetchStatementResult fetches the current state of a statement by its ID.
	fetchStatementResult(ctx context.Context, id uuid.UUID) (*StatementResponse, error)
	// cancelStatement requests cancellation of a statement by its ID.
	cancelStatement(ctx context.Context, id uuid.UUID) error
}

var _ statementAPI = (*Client)(nil)

// StatementRequest is the body POSTed to the statement execution API.
//
// Field order is the order keys appear on the wire.
type StatementRequest struct {
	// Statement is the SQL statement to execute.
	Statement string `json:"statement"`
	// WarehouseID is the SQL warehouse to execute the statement on.
	WarehouseID string `json:"warehouse_id"`
	// WaitTimeout is how long the server blocks before answering, e.g. "10s".
	WaitTimeout string `json:"wait_timeout"`
	// Format is the format of the result set.
	Format ResultFormat `json:"format"`
	// Disposition selects where the result set is delivered.
	Disposition Disposition `json:"disposition"`
	// RowLimit caps the number of rows in the result set.
	RowLimit int `json:"row_limit"`
	// Catalog is the default catalog for the statement, omitted when empty.
	Catalog string `json:"catalog,omitempty"`
	// Schema is the default schema for the statement, omitted when empty.
	Schema string `json:"schema,omitempty"`
	// Parameters are the named statement parameters, omitted when empty.
	Parameters map[string]any `json:"parameters,omitempty"`
}

func (c *Client) submitStatement(ctx context.Context, request *StatementRequest) (int, []byte, error) {
	req, err := c.config.endpoint(statementsPath)
	if err != nil {
		return 0, nil, err
	}

	body, err := json.Marshal(request)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.http.Post(ctx, req, body)
	if err != nil {
		return 0, nil, err
	}
	defer sneakyBodyClose(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

func (c *Client) fetchStatementResult(ctx context.Context, id uuid.UUID) (*StatementResponse, error) {
	req, err := c.config.endpoint(statementsPath + id.String())
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Get(ctx, req)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var respData StatementResponse
	err = json.Unmarshal(data, &respData)
	return &respData, err
}

func (c *Client) cancelStatement(ctx context.Context, id uuid.UUID) error {
	req, err := c.config.endpoint(statementsPath + id.String() + "/cancel")
	if err != nil {
		return err
	}

	resp, err := c.http.Post(ctx, req, []byte{})
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	return checkStatusCodeOK(resp)
}

// decodeRaw decodes a response body into a generic JSON object, keeping numbers as written.
func decodeRaw(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrNotObject
	}
	return out, nil
}
