// Package migrations embeds the SQLite schema of the controller.
//
// Importing it registers the files with the database package, so
// db.Migrate works without the SQL present on the device filesystem.
package migrations

import (
	"embed"

	"github.com/nerrad567/brewlogic-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
