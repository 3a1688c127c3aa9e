package main

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/playwright-community/playwright-go"
	"github.com/urfave/cli/v2"

	internalcli "github.com/adyen/shopcheck/internal/cli"
	"github.com/adyen/shopcheck/internal/config"
	"github.com/adyen/shopcheck/internal/database"
	"github.com/adyen/shopcheck/internal/models"
	"github.com/adyen/shopcheck/internal/regression"
	"github.com/adyen/shopcheck/internal/repository"
	"github.com/adyen/shopcheck/internal/services"
	"github.com/adyen/shopcheck/internal/suite"
)

var version = "0.1.0"

// envFunc returns the lookup used by every config loader: the process
// environment layered over the optional YAML file.
func envFunc(c *cli.Context) (func(string) string, error) {
	path := c.String("config")
	if path == "" {
		return os.Getenv, nil
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return file.Getenv(os.Getenv), nil
}

// withOverrides lets command-line flags win over environment and file
func withOverrides(getenv func(string) string, overrides map[string]string) func(string) string {
	return func(key string) string {
		if v := overrides[key]; v != "" {
			return v
		}
		return getenv(key)
	}
}

// openRunService connects to the results database and returns the service over it
func openRunService(getenv func(string) string, browserName string) (services.RunService, *sql.DB, error) {
	pgConfig, err := config.LoadPostgresConfig(getenv)
	if err != nil {
		return nil, nil, fmt.Errorf("missing required database configuration: %w", err)
	}

	db, err := database.Open(pgConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database successfully")

	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return services.NewRunService(repository.NewRunRepository(db), browserName), db, nil
}

// RunCommand returns the run command
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the regression suite against the shop",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "shop to test (overrides SHOPCHECK_BASE_URL)"},
			&cli.StringFlag{Name: "browser", Usage: "chromium, firefox or webkit (overrides SHOPCHECK_BROWSER)"},
			&cli.BoolFlag{Name: "record", Usage: "store the run and its case results in Postgres"},
		},
		Action: func(c *cli.Context) error {
			getenv, err := envFunc(c)
			if err != nil {
				return err
			}
			getenv = withOverrides(getenv, map[string]string{
				"SHOPCHECK_BASE_URL": c.String("base-url"),
				"SHOPCHECK_BROWSER":  c.String("browser"),
			})

			browserConfig, err := config.LoadBrowserConfig(getenv)
			if err != nil {
				return fmt.Errorf("invalid browser configuration: %w", err)
			}
			data := config.LoadSuiteData(getenv)

			opts := []suite.Option{}
			if c.Bool("record") {
				runService, db, err := openRunService(getenv, browserConfig.Browser)
				if err != nil {
					return err
				}
				defer db.Close()
				opts = append(opts, suite.WithReporter(runService))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := suite.NewRunner(browserConfig, suite.PlaywrightLauncher, opts...)
			report, runErr := runner.Execute(ctx, regression.Cases(data)...)
			printReport(c.App.Writer, report)

			if runErr != nil {
				log.Printf("Run %s: %v", report.RunID, runErr)
			}
			if !report.Passed() {
				return cli.Exit("regression run failed", 1)
			}
			return nil
		},
	}
}

// StorefrontCommand returns the storefront command
func StorefrontCommand() *cli.Command {
	return &cli.Command{
		Name:  "storefront",
		Usage: "Serve the fixture shop the suite can run against",
		Action: func(c *cli.Context) error {
			getenv, err := envFunc(c)
			if err != nil {
				return err
			}

			storefrontConfig, err := config.LoadStorefrontConfig(getenv)
			if err != nil {
				return fmt.Errorf("invalid storefront configuration: %w", err)
			}

			deps, err := internalcli.NewServerDependencies(storefrontConfig)
			if err != nil {
				return err
			}

			return internalcli.RunServe(deps)
		},
	}
}

// InstallCommand returns the install command
func InstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Download the playwright driver and the configured browser",
		Action: func(c *cli.Context) error {
			getenv, err := envFunc(c)
			if err != nil {
				return err
			}

			browserConfig, err := config.LoadBrowserConfig(getenv)
			if err != nil {
				return fmt.Errorf("invalid browser configuration: %w", err)
			}

			log.Printf("Installing playwright driver and %s", browserConfig.Browser)
			if err := playwright.Install(&playwright.RunOptions{
				DriverDirectory: browserConfig.DriverPath,
				Browsers:        []string{browserConfig.Browser},
				Verbose:         true,
			}); err != nil {
				return fmt.Errorf("failed to install playwright: %w", err)
			}
			return nil
		},
	}
}

// HistoryCommand returns the history command
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List recorded runs, or show the cases of one run",
		ArgsUsage: "[run-id]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs to list"},
		},
		Action: func(c *cli.Context) error {
			getenv, err := envFunc(c)
			if err != nil {
				return err
			}

			runService, db, err := openRunService(getenv, "")
			if err != nil {
				return err
			}
			defer db.Close()

			if id := c.Args().First(); id != "" {
				run, err := runService.GetRun(c.Context, id)
				if err != nil {
					return err
				}
				printRun(c.App.Writer, run)
				return nil
			}

			runs, err := runService.RecentRuns(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			printRuns(c.App.Writer, runs)
			return nil
		},
	}
}

func printReport(w io.Writer, report suite.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, res := range report.Results {
		line := fmt.Sprintf("%s\t%s\t%s", res.Status, res.Name, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			line += "\t" + res.Err.Error()
		}
		if res.Screenshot != "" {
			line += "\t" + res.Screenshot
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
	fmt.Fprintln(w, report.Summary())
}

func printRuns(w io.Writer, runs []*models.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tBROWSER\tSTARTED\tDURATION\tBASE URL")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Status, run.Browser, run.StartedAt.Format(time.RFC3339),
			run.Duration().Round(time.Millisecond), run.BaseURL)
	}
	tw.Flush()
}

func printRun(w io.Writer, run *models.Run) {
	fmt.Fprintf(w, "Run %s (%s) against %s with %s\n", run.ID, run.Status, run.BaseURL, run.Browser)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cr := range run.Cases {
		fmt.Fprintf(tw, "%s\t%s\t%dms\t%s\n", cr.Status, cr.Name, cr.DurationMS, cr.Error)
	}
	tw.Flush()
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "shopcheck",
		Usage:   "UI regression suite for the e-commerce site",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				EnvVars: []string{"SHOPCHECK_CONFIG"},
				Usage:   "YAML configuration file; environment variables take precedence",
			},
		},
		Commands: []*cli.Command{
			RunCommand(),
			StorefrontCommand(),
			InstallCommand(),
			HistoryCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Fatal(err)
	}
}
