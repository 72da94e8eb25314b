package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pharmaterm/pos-core/internal/config"
)

func TestDriverName(t *testing.T) {
	assert.Equal(t, "postgres", driverName(config.DatabaseConfig{}))
	assert.Equal(t, "postgres", driverName(config.DatabaseConfig{Driver: "postgres"}))
	assert.Equal(t, "pgx", driverName(config.DatabaseConfig{Driver: "pgx"}))
}
