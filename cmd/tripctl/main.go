package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PrathmeshSose/ai-travel-agent/internal/cache"
	"github.com/PrathmeshSose/ai-travel-agent/internal/calendar"
	"github.com/PrathmeshSose/ai-travel-agent/internal/config"
	"github.com/PrathmeshSose/ai-travel-agent/internal/document"
	"github.com/PrathmeshSose/ai-travel-agent/internal/factory"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
	"github.com/PrathmeshSose/ai-travel-agent/internal/services"
)

var verbose bool

func main() {
	_ = godotenv.Load()
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tripctl",
		Short: "Plan trips and convert itineraries from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "15:04:05",
				NoColor:    true,
			}).Level(level).With().Timestamp().Logger()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	root.AddCommand(newPlanCmd(), newCalendarCmd())
	return root
}

func newPlanCmd() *cobra.Command {
	var (
		trip   model.TripRequest
		budget string
		style  string
		outDir string
		pdf    bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Research a destination and write the itinerary as .txt and .ics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("days") {
				if err := services.CheckDays(trip.Days); err != nil {
					return err
				}
			}
			cfg, err := config.New()
			if err != nil {
				return err
			}
			trip.Budget = model.Budget(budget)
			trip.Style = model.Style(style)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			mem := cache.NewMemory()
			plan, err := services.RunPipeline(ctx,
				factory.NewResearcher(cfg, mem, log.Logger),
				factory.NewSynthesizer(cfg, log.Logger),
				trip,
				services.Credentials{CompletionKey: cfg.CompletionAPIKey, SearchKey: cfg.SearchAPIKey},
				time.Now())
			if err != nil {
				return err
			}

			exp := factory.NewExporter(cfg, log.Logger).Export(plan.Itinerary, plan.Trip.Destination, plan.StartDate)
			files := map[string][]byte{
				document.ExtText:     document.Text(plan.Itinerary),
				document.ExtCalendar: exp.Payload,
			}
			if pdf {
				body, err := document.PDF(plan.Itinerary, plan.Trip.Destination, plan.GeneratedAt)
				if err != nil {
					return err
				}
				files[document.ExtPDF] = body
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, ext := range []string{document.ExtText, document.ExtCalendar, document.ExtPDF} {
				body, ok := files[ext]
				if !ok {
					continue
				}
				path := filepath.Join(outDir, document.Filename(plan.Trip.Destination, ext))
				if err := os.WriteFile(path, body, 0o644); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			printMismatches(cmd.ErrOrStderr(), len(exp.Events), exp.Mismatches)
			return nil
		},
	}
	cmd.Flags().StringVar(&trip.Destination, "to", "", "Destination (required)")
	cmd.Flags().StringVar(&trip.Departure, "from", "", "Departure location")
	cmd.Flags().IntVar(&trip.Days, "days", model.DefaultTripDays, "Trip length in days (1-14)")
	cmd.Flags().StringVar(&budget, "budget", string(model.BudgetLow), "Budget, Mid-range or Luxury")
	cmd.Flags().StringVar(&style, "style", string(model.StyleExplorer), "Explorer, Relaxed, Adventure, Cultural or Foodie")
	cmd.Flags().StringSliceVar(&trip.Interests, "interest", nil, "Interest tag, repeatable")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "Also write a PDF")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newCalendarCmd() *cobra.Command {
	var in, destination, start, out string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Convert itinerary text into an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if in == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(in)
			}
			if err != nil {
				return err
			}

			var startDate time.Time
			if s := strings.TrimSpace(start); s != "" {
				if startDate, err = time.Parse("2006-01-02", s); err != nil {
					return fmt.Errorf("--start must be YYYY-MM-DD: %w", err)
				}
			}
			title := strings.TrimSpace(destination)
			if title == "" {
				title = "Trip"
			}

			exp := calendar.NewExporter("", calendar.WithLogger(log.Logger)).Export(string(raw), title, startDate)

			if out == "" {
				_, err = cmd.OutOrStdout().Write(exp.Payload)
			} else {
				err = os.WriteFile(out, exp.Payload, 0o644)
				if err == nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
				}
			}
			if err != nil {
				return err
			}
			printMismatches(cmd.ErrOrStderr(), len(exp.Events), exp.Mismatches)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "Itinerary file, - for stdin")
	cmd.Flags().StringVar(&destination, "destination", "", "Destination used in event titles")
	cmd.Flags().StringVar(&start, "start", "", "First day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	return cmd
}
