package migrations

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/database"
)

// Files exposes the embedded SQL migrations, one directory per dialect,
// applied in lexicographical order.
//
//go:embed postgres/*.sql sqlite/*.sql
var Files embed.FS

// For returns the migration set for a database driver name.
func For(driver string) (fs.FS, error) {
	switch {
	case database.IsPostgres(driver):
		return fs.Sub(Files, "postgres")
	case driver == database.DriverSQLite:
		return fs.Sub(Files, "sqlite")
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}
