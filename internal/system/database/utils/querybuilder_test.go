package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToPostgresParams(t *testing.T) {
	got := ConvertToPostgresParams("UPDATE t SET status = ?, updated_at = ? WHERE id = ?")
	assert.Equal(t, "UPDATE t SET status = $1, updated_at = $2 WHERE id = $3", got)
	assert.Equal(t, "SELECT 1", ConvertToPostgresParams("SELECT 1"))
}
