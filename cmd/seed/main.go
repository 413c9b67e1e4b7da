// Command seed creates the demo tenant for local development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/repository"
	"github.com/swiftslot/swiftslot/internal/seed"
)

var cli struct {
	DatabaseURL   string        `help:"PostgreSQL connection string." env:"DATABASE_URL" required:""`
	AdminPassword string        `help:"Password for ${admin}." env:"SEED_ADMIN_PASSWORD" required:""`
	StaffPassword string        `help:"Password for ${staff}." env:"SEED_STAFF_PASSWORD" required:""`
	BcryptCost    int           `help:"bcrypt cost factor." env:"BCRYPT_COST" default:"12"`
	Migrate       bool          `help:"Apply migrations before seeding." default:"true" negatable:""`
	Timeout       time.Duration `help:"Overall timeout." default:"30s"`
	Format        string        `help:"Output format." enum:"plain,json" default:"plain"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Create the demo-salon organization with sample users and customers."),
		kong.Vars{
			"admin": seed.AdminEmail,
			"staff": seed.StaffEmail,
		},
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), cli.Timeout)
	defer cancel()

	repo, err := repository.New(ctx, cli.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	if cli.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	res, err := seed.Run(ctx, repo, auth.NewVault(cli.BcryptCost), seed.Options{
		AdminPassword: cli.AdminPassword,
		StaffPassword: cli.StaffPassword,
	}, logger)
	if err != nil {
		return err
	}

	if cli.Format == "json" {
		fmt.Printf("{\"organizationId\":%q,\"slug\":%q,\"created\":%t}\n", res.Organization.ID, res.Organization.Slug, res.Created)
		return nil
	}
	fmt.Printf("organization: %s (%s)\n", res.Organization.Slug, res.Organization.ID)
	fmt.Printf("admin: %s\nstaff: %s\n", seed.AdminEmail, seed.StaffEmail)
	if !res.Created {
		fmt.Println("demo data already present, nothing created")
	}
	return nil
}
