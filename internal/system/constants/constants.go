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

package constants

import "time"

const (
	ContentTypeHeaderName        = "Content-Type"
	ContentDispositionHeaderName = "Content-Disposition"
	CorrelationIDHeaderName      = "X-Correlation-ID"
	ContentTypeJSON              = "application/json"
	ContentTypeText              = "text/plain; charset=utf-8"
	ContentTypeCSV               = "text/csv"
	ContentTypeXLSX              = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// CorrelationIDKey is the gin context key holding the request correlation ID.
	CorrelationIDKey = "correlation_id"

	APIBasePath = "/api"

	// MaxListSize bounds the number of records returned by a list call.
	MaxListSize = 100

	// DefaultTrackerTimeout is the single-attempt budget for ticket creation.
	DefaultTrackerTimeout = 15 * time.Second

	// DefaultMaxUploadBytes caps the /submit request body.
	DefaultMaxUploadBytes = 32 << 20

	// Aliases for convenience
	HeaderContentType = ContentTypeHeaderName
)
