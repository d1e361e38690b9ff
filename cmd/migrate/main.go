// migrate applies or rolls back the embedded database schema.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/backchair/storefront/internal/config"
	"github.com/backchair/storefront/internal/infra"
)

func main() {
	direction := flag.String("direction", infra.MigrateUp, "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set")
		os.Exit(1)
	}

	if err := infra.Migrate(cfg.DatabaseURL, *direction); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("migrations %s complete\n", *direction)
}
