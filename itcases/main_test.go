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
	"os"
	"strings"
	"testing"

	"github.com/lucasepe/codename"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	dbsql "github.com/KaushalVachhani/mcp-databricks-sql"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func NewClient(t testing.TB) *dbsql.Client {
	config := &dbsql.Config{
		Host:        os.Getenv("DATABRICKS_HOST"),
		Token:       os.Getenv("DATABRICKS_TOKEN"),
		WarehouseID: os.Getenv("DATABRICKS_WAREHOUSE_ID"),
	}

	if config.Host == "" || config.Token == "" || config.WarehouseID == "" {
		t.Skip("DATABRICKS_HOST, DATABRICKS_TOKEN or DATABRICKS_WAREHOUSE_ID not set")
		return nil // unreachable
	}

	return dbsql.NewClient(config)
}

// Scratch returns the catalog and schema tests may create tables in.
func Scratch(t testing.TB) (string, string) {
	catalog, schema := os.Getenv("DATABRICKS_CATALOG"), os.Getenv("DATABRICKS_SCHEMA")
	if catalog == "" || schema == "" {
		t.Skip("DATABRICKS_CATALOG or DATABRICKS_SCHEMA not set")
	}
	return catalog, schema
}

func RandomName(t testing.TB) string {
	rng, err := codename.DefaultRNG()
	require.NoError(t, err)
	return strings.ReplaceAll(codename.Generate(rng, 10), "-", "_")
}
