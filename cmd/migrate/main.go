// migrate aplica o imprime los scripts SQL embebidos del esquema de despacho y stock.
//
// Uso:
//
//	go run ./cmd/migrate          aplica los scripts sobre DATABASE_URL / DB_*
//	go run ./cmd/migrate -print   escribe el SQL en stdout sin conectarse
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/dispatch-api/internal/infrastructure/postgres"
	"github.com/jhoicas/dispatch-api/pkg/config"
	"github.com/jhoicas/dispatch-api/pkg/logger"
)

func main() {
	printOnly := flag.Bool("print", false, "imprimir el SQL en lugar de aplicarlo")
	flag.Parse()

	if *printOnly {
		if err := printMigrations(); err != nil {
			fmt.Fprintf(os.Stderr, "Imprimir migraciones: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	log.Info().Strs("migrations", applied).Msg("esquema actualizado")
}

func printMigrations() error {
	names, err := postgres.Migrations()
	if err != nil {
		return err
	}
	for _, name := range names {
		sql, err := postgres.ReadMigration(name)
		if err != nil {
			return err
		}
		fmt.Printf("-- %s\n%s\n", name, sql)
	}
	return nil
}
