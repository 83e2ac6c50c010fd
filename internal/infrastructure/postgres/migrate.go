package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations devuelve los scripts embebidos en orden de nombre.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// ReadMigration devuelve el SQL de un script embebido.
func ReadMigration(name string) (string, error) {
	b, err := migrationsFS.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Migrate aplica todos los scripts. Son idempotentes (IF NOT EXISTS), así que se pueden
// correr en cada arranque. Exec sin argumentos usa el protocolo simple y admite varias sentencias.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	names, err := Migrations()
	if err != nil {
		return nil, fmt.Errorf("listar migraciones: %w", err)
	}
	for _, name := range names {
		sql, err := ReadMigration(name)
		if err != nil {
			return nil, fmt.Errorf("leer %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, sql); err != nil {
			return nil, fmt.Errorf("aplicar %s: %w", name, err)
		}
	}
	return names, nil
}
