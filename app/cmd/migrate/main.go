package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"civic-portal/app/config"
	"civic-portal/app/utils/database"
	"civic-portal/app/utils/logger"
	"civic-portal/app/utils/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// SeedFile is the reference-data seed: departments and their services
type SeedFile struct {
	Departments []SeedDepartment `yaml:"departments"`
}

type SeedDepartment struct {
	Name     string        `yaml:"name"`
	Services []SeedService `yaml:"services"`
}

type SeedService struct {
	Name     string `yaml:"name"`
	FeeCents int64  `yaml:"fee_cents"`
}

func main() {
	var (
		command  = flag.String("command", "up", "Migration command (up, down, status)")
		steps    = flag.String("steps", "0", "Number of steps for down migration")
		seedPath = flag.String("seed", "", "Path to a reference-data seed file applied after migration")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := cfg.LogLevel
	if *verbose {
		logLevel = "debug"
	}

	appLogger, err := logger.New(logLevel)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	dbConfig := database.MigrationConfig(
		cfg.DatabaseHost,
		parsePort(cfg.DatabasePort),
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)

	dbConn, err := database.NewConnection(dbConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	migrator := migration.NewMigrator(dbConn.DB(), appLogger, migrationsFS)

	switch *command {
	case "up":
		if err := migrator.Up(); err != nil {
			appLogger.Error("Migration up failed", "error", err)
			os.Exit(1)
		}
		appLogger.Info("All migrations applied successfully")

	case "down":
		stepCount, err := strconv.Atoi(*steps)
		if err != nil {
			appLogger.Error("Invalid steps value", "steps", *steps, "error", err)
			os.Exit(1)
		}

		if stepCount <= 0 {
			stepCount = 1
		}

		for i := 0; i < stepCount; i++ {
			if err := migrator.Down(); err != nil {
				appLogger.Error("Migration down failed", "error", err, "step", i+1)
				os.Exit(1)
			}
		}
		appLogger.Info("Migrations rolled back successfully", "steps", stepCount)

	case "status":
		if err := migrator.Status(); err != nil {
			appLogger.Error("Migration status failed", "error", err)
			os.Exit(1)
		}

	default:
		appLogger.Error("Unknown command", "command", *command)
		fmt.Println("Available commands: up, down, status")
		os.Exit(1)
	}

	if *seedPath != "" {
		if err := applySeed(context.Background(), dbConn, *seedPath, appLogger); err != nil {
			appLogger.Error("Seed failed", "error", err, "path", *seedPath)
			os.Exit(1)
		}
		appLogger.Info("Seed applied", "path", *seedPath)
	}
}

// applySeed loads the yaml seed and upserts departments and services by
// name, so re-running it never duplicates reference data.
func applySeed(ctx context.Context, dbConn *database.Connection, path string, appLogger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, dept := range seed.Departments {
		if _, err := dbConn.Exec(ctx,
			`INSERT INTO departments (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			dept.Name); err != nil {
			return fmt.Errorf("failed to insert department %q: %w", dept.Name, err)
		}

		var departmentID int64
		if err := dbConn.QueryRow(ctx,
			`SELECT id FROM departments WHERE name = $1`, dept.Name).Scan(&departmentID); err != nil {
			return fmt.Errorf("failed to look up department %q: %w", dept.Name, err)
		}

		for _, svc := range dept.Services {
			result, err := dbConn.Exec(ctx, `
				INSERT INTO services (department_id, name, fee_cents)
				SELECT $1, $2, $3
				WHERE NOT EXISTS (
					SELECT 1 FROM services WHERE department_id = $1 AND name = $2
				)`,
				departmentID, svc.Name, svc.FeeCents)
			if err != nil {
				return fmt.Errorf("failed to insert service %q: %w", svc.Name, err)
			}
			if rows, _ := result.RowsAffected(); rows > 0 {
				appLogger.Debug("seeded service", "department", dept.Name, "service", svc.Name)
			}
		}
	}

	return nil
}

func parsePort(portStr string) int {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 5432
	}
	return port
}
