package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaDefinesTables(t *testing.T) {
	ddl := Schema()

	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS pipeline_runs")
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS run_steps")
	assert.Contains(t, ddl, "UNIQUE (run_id, step)")
	assert.Contains(t, ddl, "ON DELETE CASCADE")
}

func TestCloseWithoutPool(t *testing.T) {
	db := &DB{}
	assert.NotPanics(t, db.Close)
}
