// Package migrations содержит embedded goose-миграции для обоих бэкендов.
package migrations

import "embed"

// FS — каталоги postgres/ и sqlite/ с SQL-миграциями.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Каталоги внутри FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
