package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/revops/intake-service/internal/system/error/serviceerror"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  serviceerror.ServiceError
		want int
	}{
		{"missing field", serviceerror.MissingFieldError, http.StatusBadRequest},
		{"too long", serviceerror.FieldTooLongError, http.StatusBadRequest},
		{"invalid status", serviceerror.InvalidStatusError, http.StatusBadRequest},
		{"not found", serviceerror.ResourceNotFoundError, http.StatusNotFound},
		{"no data", serviceerror.NoDataError, http.StatusNotFound},
		{"rate limited", serviceerror.RateLimitedError, http.StatusTooManyRequests},
		{"payload too large", serviceerror.PayloadTooLargeError, http.StatusRequestEntityTooLarge},
		{"database", serviceerror.DatabaseError, http.StatusInternalServerError},
		{"internal", serviceerror.InternalServerError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.err
			assert.Equal(t, tc.want, StatusFor(&err))
		})
	}
}

func TestGenerateUUID(t *testing.T) {
	first, second := GenerateUUID(), GenerateUUID()
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}
