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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrMissingHost is returned when no workspace host is configured.
	ErrMissingHost = errors.New("databricks host is not configured")
	// ErrMissingToken is returned when no bearer token is configured.
	ErrMissingToken = errors.New("databricks token is not configured")
	// ErrMissingWarehouseID is returned when neither the statement nor the config names a warehouse.
	ErrMissingWarehouseID = errors.New("warehouse id is not configured")
	// ErrInvalidStatementID is returned when a statement ID is not a UUID.
	ErrInvalidStatementID = errors.New("statement id is invalid")
	// ErrNotObject is returned when a response body is valid JSON but not an object.
	ErrNotObject = errors.New("response body is not a JSON object")
)

// Error represents an error response from the Databricks workspace.
type Error struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
	// ErrorCode is the service error code, e.g. "INVALID_PARAMETER_VALUE".
	ErrorCode string `json:"error_code"`
	// Message is the human readable error message.
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.ErrorCode, e.Message)
}

func statusOK(code int) bool {
	return code >= 200 && code < 300
}

func checkStatusCodeOK(resp *http.Response) error {
	if statusOK(resp.StatusCode) {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: string(data)}
	}
	return statusError(resp.StatusCode, data)
}

// statusError builds the error for a non-2xx response from its body.
func statusError(code int, data []byte) *Error {
	errResp := Error{StatusCode: code}
	if err := json.Unmarshal(data, &errResp); err != nil || errResp.Message == "" {
		return &Error{StatusCode: code, Message: string(data)}
	}
	return &errResp
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
