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

package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revops/intake-service/internal/system/error/apierror"
	"github.com/revops/intake-service/internal/system/error/serviceerror"
)

// StatusFor maps a ServiceError onto its HTTP status code.
func StatusFor(err *serviceerror.ServiceError) int {
	if err.Type != serviceerror.ClientErrorType {
		return http.StatusInternalServerError
	}
	switch err.Code {
	case serviceerror.ResourceNotFoundError.Code, serviceerror.NoDataError.Code:
		return http.StatusNotFound
	case serviceerror.RateLimitedError.Code:
		return http.StatusTooManyRequests
	case serviceerror.PayloadTooLargeError.Code:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// SendError writes a ServiceError as a JSON error body with the matching status code.
func SendError(c *gin.Context, err *serviceerror.ServiceError) {
	c.AbortWithStatusJSON(StatusFor(err), apierror.NewErrorResponse(err.Error, err.ErrorDescription))
}

// SendTextError writes a ServiceError as plain text with the matching status code.
func SendTextError(c *gin.Context, err *serviceerror.ServiceError) {
	c.Abort()
	c.String(StatusFor(err), err.ErrorDescription)
}

// JSONResponse writes data as JSON with the given status code.
func JSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
