// Command vct scrapes VCT matches from vlr.gg into SQLite and renders stat images.
//
// Usage:
//
//	vct init-db --drop --yes
//	vct scrape-list
//	vct scrape-details 378829
//	vct generate-images 378829 --expected-players 10
//	vct render-report match.json --mode combined
//	vct serve
//	vct watch --schedule "@every 15m"
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"vct-status/internal/config"
	"vct-status/internal/constants"
	fxmodules "vct-status/internal/fx"
	"vct-status/internal/scheduler"
	"vct-status/internal/server"
	"vct-status/internal/service"

	crerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	root := &cobra.Command{
		Use:           "vct",
		Short:         "VCT match scraper and stat image generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(initDBCmd())
	root.AddCommand(seedDBCmd())
	root.AddCommand(testDBCmd())
	root.AddCommand(scrapeListCmd())
	root.AddCommand(scrapeDetailsCmd())
	root.AddCommand(generateImagesCmd())
	root.AddCommand(renderReportCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runOnce starts the object graph, fills targets, runs fn and stops the graph again.
func runOnce(fn func(ctx context.Context) error, targets ...any) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return crerr.Wrap(err, "failed to build application")
	}

	startCtx, cancelStart := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return crerr.Wrap(err, "failed to start application")
	}

	runErr := fn(ctx)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// --------------------------------------------------------------------------
// database commands
// --------------------------------------------------------------------------

func initDBCmd() *cobra.Command {
	var drop, yes bool
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the schema and seed reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if drop && !yes && !confirm("Drop every table? All data will be lost. Type 'yes' to continue: ") {
				fmt.Println("Aborted.")
				return nil
			}

			var setup *service.SetupService
			return runOnce(func(ctx context.Context) error {
				fmt.Println("Initializing database...")
				seeded, err := setup.InitDB(ctx, drop)
				if err != nil {
					return err
				}
				fmt.Printf("Database ready: %d regions, %d competition types added.\n",
					seeded.RegionsAdded, seeded.CompetitionTypesAdded)
				return nil
			}, &setup)
		},
	}
	cmd.Flags().BoolVarP(&drop, "drop", "d", false, "drop all tables first (destroys data)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt for --drop")
	return cmd
}

func seedDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-db",
		Short: "Insert missing regions and competition types",
		RunE: func(cmd *cobra.Command, args []string) error {
			var setup *service.SetupService
			return runOnce(func(ctx context.Context) error {
				seeded, err := setup.Seed(ctx)
				if err != nil {
					return err
				}
				if seeded.RegionsAdded == 0 && seeded.CompetitionTypesAdded == 0 {
					fmt.Println("Reference data already present, nothing added.")
					return nil
				}
				fmt.Printf("Added %d regions and %d competition types.\n",
					seeded.RegionsAdded, seeded.CompetitionTypesAdded)
				return nil
			}, &setup)
		},
	}
}

func testDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-db",
		Short: "Check the database connection and print table counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var setup *service.SetupService
			return runOnce(func(ctx context.Context) error {
				status, err := setup.Check(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Database OK (schema version %d)\n", status.Version)
				fmt.Printf("  regions:            %d\n", status.Counts.Regions)
				fmt.Printf("  competition types:  %d\n", status.Counts.CompetitionTypes)
				fmt.Printf("  matches:            %d\n", status.Counts.Matches)
				fmt.Printf("  players:            %d\n", status.Counts.Players)
				fmt.Printf("  player match stats: %d\n", status.Counts.PlayerMatchStats)
				return nil
			}, &setup)
		},
	}
}

// --------------------------------------------------------------------------
// scraping commands
// --------------------------------------------------------------------------

func scrapeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-list",
		Short: "Scrape the upcoming and results match lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			var pipeline *service.PipelineService
			return runOnce(func(ctx context.Context) error {
				fmt.Println("Scraping match lists...")
				report, err := pipeline.ScrapeMatchList(ctx)
				if report != nil {
					for _, page := range report.Pages {
						if page.Err != nil {
							fmt.Printf("  %-20s skipped: %v\n", page.Path, page.Err)
							continue
						}
						r := page.Result
						fmt.Printf("  %-20s seen %d, created %d, updated %d, unchanged %d, failed %d\n",
							page.Path, r.Seen, r.Created, r.Updated, r.Unchanged, r.Failed)
					}
					fmt.Printf("Run %s finished: %s\n", report.Run.ID, report.Run.Status)
				}
				return err
			}, &pipeline)
		},
	}
}

func scrapeDetailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-details <match-id>",
		Short: "Scrape one match detail page and store player stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pipeline *service.PipelineService
			return runOnce(func(ctx context.Context) error {
				fmt.Printf("Scraping details of match %s...\n", args[0])
				report, err := pipeline.ScrapeMatchDetails(ctx, args[0])
				if err != nil {
					return err
				}
				r := report.Result
				fmt.Printf("Stored %d stat lines (%d already present, %d failed), %d new players.\n",
					r.StatsInserted, r.StatsSkipped, r.Failed, r.PlayersCreated)
				if report.Degraded {
					fmt.Println("Warning: aggregate tables missing, used the first map instead.")
				}
				fmt.Printf("Run %s finished: %s\n", report.Run.ID, report.Run.Status)
				return nil
			}, &pipeline)
		},
	}
}

// --------------------------------------------------------------------------
// image commands
// --------------------------------------------------------------------------

func generateImagesCmd() *cobra.Command {
	var opts service.ImageOptions
	cmd := &cobra.Command{
		Use:   "generate-images <match-id>",
		Short: "Render the summary and player cards of a stored match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var images *service.ImageService
			return runOnce(func(ctx context.Context) error {
				report, err := images.GenerateImages(ctx, args[0], opts)
				if err != nil {
					return err
				}
				if report.Scraped {
					fmt.Println("Match data was missing or incomplete, scraped it first.")
				}
				if report.Summary != "" {
					fmt.Printf("Summary: %s\n", report.Summary)
				}
				for _, card := range report.Cards {
					fmt.Printf("Card:    %s\n", card)
				}
				if report.Failed > 0 {
					return crerr.Newf("%d images failed to render", report.Failed)
				}
				return nil
			}, &images)
		},
	}
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "directory for the PNG files (default IMAGE_OUTPUT_DIR)")
	cmd.Flags().IntVar(&opts.ExpectedPlayers, "expected-players", 0, "re-scrape when fewer stat lines are stored (default EXPECTED_PLAYERS)")
	cmd.Flags().BoolVar(&opts.SkipSummary, "skip-summary", false, "do not render the match summary")
	cmd.Flags().BoolVar(&opts.SkipPlayer, "skip-player", false, "do not render player cards")
	return cmd
}

func renderReportCmd() *cobra.Command {
	var (
		mapIndex  int
		mode      string
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "render-report <file.json>",
		Short: "Render map and player images from a match report document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := service.ReportOptions{Mode: service.ReportMode(mode), OutputDir: outputDir}
			if cmd.Flags().Changed("map-index") {
				// flag is 1-based like the combined_map_N.png names
				idx := mapIndex - 1
				opts.MapIndex = &idx
			}

			var images *service.ImageService
			return runOnce(func(ctx context.Context) error {
				report, err := images.RenderReport(ctx, args[0], opts)
				if err != nil {
					return err
				}
				for _, path := range report.Maps {
					fmt.Printf("Map:    %s\n", path)
				}
				for _, path := range report.Players {
					fmt.Printf("Player: %s\n", path)
				}
				if report.Failed > 0 {
					return crerr.Newf("%d images failed to render", report.Failed)
				}
				return nil
			}, &images)
		},
	}
	cmd.Flags().IntVar(&mapIndex, "map-index", 0, "render only this map (1-based)")
	cmd.Flags().StringVar(&mode, "mode", string(service.ReportModeBoth), "combined, individual or both")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for the PNG files (default IMAGE_OUTPUT_DIR)")
	return cmd
}

// --------------------------------------------------------------------------
// long-running commands
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored data as a read-only JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				fxmodules.Module,
				fx.Invoke(server.Register),
			)
			if err := app.Err(); err != nil {
				return crerr.Wrap(err, "failed to build application")
			}
			app.Run()
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-scrape the match lists on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				fxmodules.Module,
				fx.Decorate(func(cfg *config.Config) *config.Config {
					if schedule == "" {
						return cfg
					}
					c := *cfg
					c.WatchSchedule = schedule
					return &c
				}),
				fx.Invoke(scheduler.Register),
			)
			if err := app.Err(); err != nil {
				return crerr.Wrap(err, "failed to build application")
			}
			app.Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron spec or descriptor (default WATCH_SCHEDULE)")
	return cmd
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
