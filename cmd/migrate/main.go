// Command migrate applies or rolls back the PostgreSQL schema outside the
// service, e.g. from a deploy job.
package main

import (
	"flag"
	"fmt"
	"os"

	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Close()

	if cfg.Database.Driver != "postgres" {
		log.Error("MIGRATION", fmt.Sprintf("Migrations target PostgreSQL, DB_DRIVER is %q", cfg.Database.Driver))
		os.Exit(2)
	}

	runner := migrations.NewRunner(cfg.Database.DSN, log)
	defer runner.Close()

	var err error
	if *down {
		log.Warn("MIGRATION", "Rolling back all migrations")
		err = runner.MigrateDown()
	} else {
		err = runner.RunMigrations()
	}
	if err != nil {
		log.Fatal("MIGRATION", err.Error())
	}
	log.Info("MIGRATION", "✅ Done")
}
