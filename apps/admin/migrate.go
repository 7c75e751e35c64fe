package main

import (
	"context"

	"github.com/trezcool/presence/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printf("Usage: migrate up|down|status\n")
		return errHelp
	}
	ctx := context.Background()
	switch args[0] {
	case "up":
		if err := database.Migrate(ctx, cli.c.DB); err != nil {
			return err
		}
		cli.printf("migrations applied\n")
	case "down":
		if err := database.MigrateDown(ctx, cli.c.DB); err != nil {
			return err
		}
		cli.printf("last migration rolled back\n")
	case "status":
		states, err := database.MigrationStatus(ctx, cli.c.DB)
		if err != nil {
			return err
		}
		for _, st := range states {
			applied := "pending"
			if st.Applied {
				applied = "applied " + st.AppliedAt.Format("2006-01-02 15:04:05")
			}
			cli.printf("%05d %-30s %s\n", st.Version, st.Source, applied)
		}
	default:
		cli.printf("Usage: migrate up|down|status\n")
		return errHelp
	}
	return nil
}
