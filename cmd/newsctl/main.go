// Command newsctl runs maintenance tasks against the newsroom database:
// migrations, seeding, legacy import and admin creation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/service"
	"github.com/newsroom-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const usage = `newsctl manages a newsroom database.

Usage:
  newsctl migrate up|down [--to VERSION]
  newsctl seed
  newsctl import-legacy [--owner USERNAME] [--dir PATH]
  newsctl create-admin --username NAME --email EMAIL [--password PASSWORD]

Configuration is read from the environment and an optional .env file.
`

// errUsage marks command line mistakes
var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs
type app struct {
	cfg      *config.Config
	db       *database.DB
	repos    *repository.Repositories
	tokens   *auth.TokenService
	services *service.Services
	log      zerolog.Logger
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(os.Stdout, usage)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, rest := args[0], args[1:]
	switch command {
	case "migrate":
		return withApp(func(a *app) error { return a.migrate(rest) })
	case "seed":
		return withApp(func(a *app) error { return a.seed(ctx, rest) })
	case "import-legacy":
		return withApp(func(a *app) error { return a.importLegacy(ctx, rest) })
	case "create-admin":
		return withApp(func(a *app) error { return a.createAdmin(ctx, rest) })
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func withApp(fn func(a *app) error) error {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	if err != nil {
		return err
	}

	repos := repository.New(db)
	return fn(&app{
		cfg:      cfg,
		db:       db,
		repos:    repos,
		tokens:   tokens,
		services: service.NewServices(repos, tokens, cfg, log),
		log:      log,
	})
}

func (a *app) migrate(args []string) error {
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	to := flagSet.Uint("to", 0, "migrate to this exact version instead of all the way")
	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if flagSet.Changed("to") {
		return a.db.MigrateToVersion(*to)
	}
	switch flagSet.Arg(0) {
	case "up":
		return a.db.RunMigrations()
	case "down":
		return a.db.MigrateDown()
	default:
		return fmt.Errorf("%w: migrate needs up or down", errUsage)
	}
}

func (a *app) seed(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	created, err := a.services.Setup.EnsureDefaultCategories(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("categories created: %d\n", created)

	if a.cfg.Seed.AdminPassword == "" {
		fmt.Println("ADMIN_PASSWORD not set; skipping admin account")
		return nil
	}
	user, ok, err := a.services.Setup.EnsureAdmin(ctx, a.cfg.Seed.AdminUsername, a.cfg.Seed.AdminEmail, a.cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("admin %s created\n", user.Username)
	} else {
		fmt.Printf("admin %s already exists\n", user.Username)
	}
	return nil
}

func (a *app) importLegacy(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("import-legacy", pflag.ContinueOnError)
	owner := flagSet.String("owner", a.cfg.Seed.AdminUsername, "username that will own the imported articles")
	dir := flagSet.String("dir", a.cfg.Legacy.Dir, "legacy article directory")
	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	services := a.services
	if *dir != a.cfg.Legacy.Dir {
		cfg := *a.cfg
		cfg.Legacy.Dir = *dir
		services = service.NewServices(a.repos, a.tokens, &cfg, a.log)
	}

	user, err := a.repos.User.GetByUsername(ctx, *owner)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("owner %q does not exist; create it with newsctl create-admin", *owner)
	}

	report, err := services.Import.ImportLegacy(ctx, user.ID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (a *app) createAdmin(ctx context.Context, args []string) error {
	flagSet := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	username := flagSet.String("username", a.cfg.Seed.AdminUsername, "admin username")
	email := flagSet.String("email", a.cfg.Seed.AdminEmail, "admin email")
	password := flagSet.String("password", "", "admin password (generated when empty)")
	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	generated := false
	if *password == "" {
		p, err := auth.GeneratePassword(16)
		if err != nil {
			return err
		}
		*password = p
		generated = true
	}

	user, created, err := a.services.Setup.EnsureAdmin(ctx, *username, *email, *password)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("user %q already exists", user.Username)
	}

	fmt.Printf("admin %s created (id %d)\n", user.Username, user.ID)
	if generated {
		fmt.Printf("generated password: %s\n", *password)
	}
	return nil
}
