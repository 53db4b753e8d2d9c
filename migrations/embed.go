// Package migrations embeds the trace schema into the binary.
package migrations

import (
	"embed"

	"github.com/ZhaoCake/cakeboard/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
