package postgres_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "..", "..", "db", "migrations", name))
	require.NoError(t, err)
	return strings.Join(strings.Fields(string(b)), " ")
}

func TestInvoicesMigration_ModelSetIffCompleted(t *testing.T) {
	up := readMigration(t, "000001_create_invoices.up.sql")

	assert.Contains(t, up, "CONSTRAINT chk_invoices_model_completed")
	// a model implies completed
	assert.Contains(t, up, "extraction_model IS NULL OR extraction_status = 'completed'")
	// completed implies a model
	assert.Contains(t, up, "extraction_status <> 'completed' OR extraction_model IS NOT NULL")
}

func TestInvoicesMigration_DownDropsTable(t *testing.T) {
	down := readMigration(t, "000001_create_invoices.down.sql")
	assert.Contains(t, down, "DROP TABLE IF EXISTS invoices")
}
