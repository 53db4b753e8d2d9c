package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/database"
	_ "github.com/ZhaoCake/cakeboard/migrations" // registers the schema
)

// runMigrate implements `cakeboard migrate [up|down]` against the trace
// database named by the current config. down rolls back one migration.
func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fset := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fset.SetOutput(out)
	if err := fset.Parse(args); err != nil {
		return err
	}
	direction := "up"
	if fset.NArg() > 0 {
		direction = fset.Arg(0)
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Open(database.FromTrace(cfg.Trace))
	if err != nil {
		return fmt.Errorf("opening trace database: %w", err)
	}
	defer db.Close() //nolint:errcheck // nothing to recover on close

	if direction == "down" {
		if err := db.MigrateDown(ctx); err != nil {
			return fmt.Errorf("rolling back: %w", err)
		}
		fmt.Fprintln(out, "rolled back 1 migration")
		return nil
	}

	n, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	fmt.Fprintf(out, "applied %d migrations\n", n)
	return nil
}
