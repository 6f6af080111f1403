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

package serviceerror

type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

type ServiceError struct {
	Code             string           `json:"code"`
	Type             ServiceErrorType `json:"type"`
	Error            string           `json:"error"`
	ErrorDescription string           `json:"error_description,omitempty"`
}

var (
	InternalServerError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5000",
		Error:            "internal_server_error",
		ErrorDescription: "An unexpected error occurred",
	}

	// DatabaseError is the StorageError of the intake taxonomy.
	DatabaseError = ServiceError{
		Type:             ServerErrorType,
		Code:             "SSE-5001",
		Error:            "database_error",
		ErrorDescription: "A database error occurred",
	}

	InvalidRequestError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4000",
		Error:            "invalid_request",
		ErrorDescription: "The request is invalid",
	}

	ValidationError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4001",
		Error:            "validation_error",
		ErrorDescription: "Validation failed",
	}

	MissingFieldError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4002",
		Error:            "missing_field",
		ErrorDescription: "A required field is missing",
	}

	FieldTooLongError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4003",
		Error:            "field_too_long",
		ErrorDescription: "A field exceeds its maximum length",
	}

	InvalidStatusError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4005",
		Error:            "invalid_status",
		ErrorDescription: "Invalid status",
	}

	ResourceNotFoundError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4004",
		Error:            "resource_not_found",
		ErrorDescription: "Resource not found",
	}

	NoDataError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4044",
		Error:            "no_data",
		ErrorDescription: "No data to export",
	}

	PayloadTooLargeError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4130",
		Error:            "payload_too_large",
		ErrorDescription: "Request body exceeds the upload limit",
	}

	RateLimitedError = ServiceError{
		Type:             ClientErrorType,
		Code:             "CSE-4290",
		Error:            "rate_limited",
		ErrorDescription: "The issue tracker is rate limiting requests",
	}
)

func CustomServiceError(baseError ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:             baseError.Type,
		Code:             baseError.Code,
		Error:            baseError.Error,
		ErrorDescription: description,
	}
}

// Is reports whether err carries the same code as base.
func Is(err *ServiceError, base ServiceError) bool {
	return err != nil && err.Code == base.Code
}
