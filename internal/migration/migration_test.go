package migration

import (
	"io/fs"
	"testing"

	reportdomain "github.com/smallbiznis/sevadesk/internal/report/domain"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
	"github.com/smallbiznis/sevadesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySQLite(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Apply(conn, "sqlite"))
	require.NoError(t, Apply(conn, "sqlite"))

	assert.True(t, conn.Migrator().HasTable(&sevadomain.ServiceRecord{}))
	assert.True(t, conn.Migrator().HasTable(&reportdomain.Run{}))
	assert.True(t, conn.Migrator().HasIndex(&sevadomain.ServiceRecord{}, "idx_service_records_invoice_id"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(embeddedMigrations, "sql/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(embeddedMigrations, "sql/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestApplyRequiresConnection(t *testing.T) {
	assert.Error(t, Apply(nil, "sqlite"))
}
