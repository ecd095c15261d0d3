// cmd/migrate/main.go
//
// Schema migration runner.
//
// Usage:
//
//	migrate up              apply all pending migrations
//	migrate down <n>        roll back n migrations
//	migrate version         print the current schema version
//
// Migrations live in db/migrations as golang-migrate file pairs
// (NNNN_name.up.sql / NNNN_name.down.sql).  The DSN comes from the
// same config stack the server uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/serverplace/serverplace/internal/config"
	"github.com/serverplace/serverplace/internal/vault"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down <n> | version")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	ctx := context.Background()

	var secrets config.Resolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx, log.Printf)
		if err != nil {
			log.Fatalf("connect vault: %v", err)
		}
		secrets = vc
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	src := "file://" + cfg.Paths.Root + "/db/migrations"
	m, err := migrate.New(src, "mysql://"+cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		if len(os.Args) < 3 {
			usage()
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil || n < 1 {
			usage()
		}
		err = m.Steps(-n)
	case "version":
		v, dirty, verErr := m.Version()
		if verErr != nil && !errors.Is(verErr, migrate.ErrNilVersion) {
			log.Fatalf("version: %v", verErr)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return
	default:
		usage()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no change")
		return
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
	fmt.Println("ok")
}
