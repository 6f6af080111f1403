/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package provider provides the query client shared by the SQL-backed stores.
package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/revops/intake-service/internal/system/config"
	"github.com/revops/intake-service/internal/system/database"
	"github.com/revops/intake-service/internal/system/database/model"
	"github.com/revops/intake-service/internal/system/database/utils"
)

// DBClientInterface defines the query operations the stores rely on.
type DBClientInterface interface {
	// Get scans a single row into dest. found is false when no row matched.
	Get(ctx context.Context, dest interface{}, query model.DBQuery, args ...interface{}) (found bool, err error)
	Select(ctx context.Context, dest interface{}, query model.DBQuery, args ...interface{}) error
	// Execute runs a statement and returns the number of affected rows.
	Execute(ctx context.Context, query model.DBQuery, args ...interface{}) (int64, error)
	HealthCheck(ctx context.Context) error
}

type dbClient struct {
	db     *database.DB
	dbType string
}

// NewDBClient creates a client bound to the given connection.
func NewDBClient(db *database.DB) DBClientInterface {
	return &dbClient{db: db, dbType: db.Type()}
}

func (c *dbClient) resolve(query model.DBQuery) string {
	q := query.GetQuery(c.dbType)
	if c.dbType == config.StorageBackendPostgres && query.PostgresQuery == "" {
		q = utils.ConvertToPostgresParams(q)
	}
	return q
}

func (c *dbClient) Get(ctx context.Context, dest interface{}, query model.DBQuery, args ...interface{}) (bool, error) {
	if err := c.db.GetContext(ctx, dest, c.resolve(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", query.ID, err)
	}
	return true, nil
}

func (c *dbClient) Select(ctx context.Context, dest interface{}, query model.DBQuery, args ...interface{}) error {
	if err := c.db.SelectContext(ctx, dest, c.resolve(query), args...); err != nil {
		return fmt.Errorf("%s: %w", query.ID, err)
	}
	return nil
}

func (c *dbClient) Execute(ctx context.Context, query model.DBQuery, args ...interface{}) (int64, error) {
	result, err := c.db.ExecContext(ctx, c.resolve(query), args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", query.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", query.ID, err)
	}
	return rows, nil
}

func (c *dbClient) HealthCheck(ctx context.Context) error {
	return c.db.HealthCheck(ctx)
}
