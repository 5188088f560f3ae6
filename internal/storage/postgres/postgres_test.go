package postgres

import (
	"testing"

	"github.com/OCAP2/wallscan/internal/database"
	"github.com/OCAP2/wallscan/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestInit_Unreachable(t *testing.T) {
	b := New(database.PostgresConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "wallscan",
	}, zerolog.Nop())

	err := b.Init()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
	assert.NoError(t, b.Close())
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := database.PostgresConfig{Host: "db", Port: "5433", Username: "u", Password: "p", Database: "scan"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=scan sslmode=disable", cfg.DSN())
}
