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

/*
Package dbsql provides a lightweight client for the Databricks SQL statement execution API.

# Client

Use NewClient to create a client struct. This is the major entrance to construct structs for
executing statements:

	client := dbsql.NewClient(&dbsql.Config{
		Host:        "https://<workspace-host>",
		Token:       os.Getenv("DATABRICKS_TOKEN"),
		WarehouseID: "<warehouse-id>",
	})

# Execute Statements

Create a Statement and execute it to get the response body as returned by the server:

	s := client.Statement("SELECT * FROM transactions WHERE customer_id = :id")
	s.Catalog = "kaushal"
	s.Schema = "b2b"
	s.Parameters = map[string]any{"id": "C10001"}
	body, err := s.Execute(ctx)

Every statement is sent with a 10 second server-side wait, the JSON_ARRAY format and
the INLINE disposition. The body is passed through unmodified; use Submit instead to
get a typed StatementHandle:

	handle, err := s.Submit(ctx)
	if err != nil {
		return err
	}
	result, err := handle.Fetch(ctx)
	if err != nil {
		return err
	}
	values, err := result.ToValues()
*/
package dbsql
