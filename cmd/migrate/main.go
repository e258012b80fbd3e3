// Command migrate applies the embedded ledger schema.
//
//	migrate up            apply every pending migration
//	migrate down [n]      roll back n migrations (default 1)
//	migrate version       print the current version
//	migrate force <v>     mark version v as applied and clean
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/migrations"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var dbURL string

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the IMS ledger schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.OutOrStdout(), func(m *migrate.Migrate) error {
			return ignoreNoChange(m.Up())
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down [n]",
	Short: "Roll back the last n migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 1
		if len(args) == 1 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			n = v
		}
		return withMigrator(cmd.OutOrStdout(), func(m *migrate.Migrate) error {
			return ignoreNoChange(m.Steps(-n))
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(io.Discard, func(m *migrate.Migrate) error {
			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", v, dirty)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the schema version without running migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(cmd.OutOrStdout(), func(m *migrate.Migrate) error {
			return m.Force(v)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "database-url", "", "PostgreSQL URL (defaults to DB_URL)")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
}

// pgxURL rewrites a postgres:// URL to the scheme the pgx/v5 migrate driver registers.
func pgxURL(raw string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(raw, prefix) {
			return "pgx5://" + strings.TrimPrefix(raw, prefix)
		}
	}
	return raw
}

func withMigrator(out io.Writer, fn func(*migrate.Migrate) error) error {
	url := dbURL
	if url == "" {
		url = os.Getenv("DB_URL")
	}
	if url == "" {
		return errors.New("DB_URL is required (or pass --database-url)")
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgxURL(url))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if e := errors.Join(srcErr, dbErr); e != nil {
			slog.Warn("closing migrator", "error", e)
		}
	}()

	if err := fn(m); err != nil {
		return err
	}
	if v, dirty, err := m.Version(); err == nil {
		fmt.Fprintf(out, "schema at version %d (dirty=%t)\n", v, dirty)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		prefix := "error: "
		if term.IsTerminal(int(os.Stderr.Fd())) {
			prefix = "\033[31merror:\033[0m "
		}
		fmt.Fprintln(os.Stderr, prefix+err.Error())
		os.Exit(1)
	}
}
