package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/remateworker/config"
	"sjsage522/remateworker/helpers"
	"sjsage522/remateworker/internal/bienes"
	"sjsage522/remateworker/internal/boletin"
	"sjsage522/remateworker/internal/remates"
	"sjsage522/remateworker/logger"
	"sjsage522/remateworker/pkg/errors"
	"sjsage522/remateworker/services/publisher"
	"sjsage522/remateworker/services/storage"
	"sjsage522/remateworker/services/worker"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Msg("Starting application")

	// One run per invocation; a signal cancels the crawl mid-flight
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}
}

// scrapeFlags are the crawl-shaping flags of the root command.
type scrapeFlags struct {
	output       string
	lookbackDays int
	startDate    string
	endDate      string
	month        string
	pageSize     int
	limit        int
	keywords     []string
	matchFields  []string
	matchMode    string
	onlyMatching bool
	htmlOutput   string
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	flags := &scrapeFlags{}

	root := &cobra.Command{
		Use:           "remateworker",
		Short:         "Extrae remates del Boletin Concursal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), cfg, flags)
		},
	}

	root.Flags().StringVar(&flags.output, "output", cfg.OutputPath, "ruta del archivo JSON a generar")
	root.Flags().IntVar(&flags.lookbackDays, "lookback-days", cfg.LookbackDays, "dias maximos hacia atras segun la fecha de publicacion")
	root.Flags().StringVar(&flags.startDate, "start-date", "", "fecha minima de publicacion (YYYY-MM-DD)")
	root.Flags().StringVar(&flags.endDate, "end-date", "", "fecha maxima de publicacion (YYYY-MM-DD)")
	root.Flags().StringVar(&flags.month, "month", "", "mes objetivo YYYY-MM para acotar el periodo")
	root.Flags().IntVar(&flags.pageSize, "page-size", cfg.PageSize, "tamano de pagina para el listado")
	root.Flags().IntVar(&flags.limit, "limit", 0, "limite maximo de remates (0 = sin limite)")
	root.Flags().StringSliceVar(&flags.keywords, "keywords", nil, "palabras clave para filtrar remates")
	root.Flags().StringSliceVar(&flags.matchFields, "match-fields", remates.DefaultMatchFields(), "campos a revisar al aplicar palabras clave")
	root.Flags().StringVar(&flags.matchMode, "match-mode", string(remates.MatchAny), "modo de coincidencia: any / all")
	root.Flags().BoolVar(&flags.onlyMatching, "only-matching", false, "guardar solo los remates que coincidan")
	root.Flags().StringVar(&flags.htmlOutput, "html-output", "", "ruta de un informe HTML opcional")

	root.AddCommand(newBienesCmd(cfg))
	return root
}

func runScrape(ctx context.Context, cfg *config.Config, flags *scrapeFlags) error {
	log := logger.ForWorker()

	mode := remates.MatchMode(flags.matchMode)
	if mode != remates.MatchAny && mode != remates.MatchAll {
		return errors.NewConfiguration("match mode must be any or all: "+flags.matchMode, nil)
	}

	windowOpts := remates.WindowOptions{
		StartDate:    flags.startDate,
		EndDate:      flags.endDate,
		Month:        flags.month,
		LookbackDays: flags.lookbackDays,
	}
	if windowOpts.MonthOverridesDates() {
		log.Warn().Msg("Se ignoran --start-date/--end-date porque se utilizo --month")
	}
	window, err := remates.ResolveWindow(windowOpts, time.Now())
	if err != nil {
		return err
	}

	client, err := boletin.NewClient(boletin.Options{
		BaseURL:   cfg.BoletinBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	log.Info().Str("base_url", cfg.BoletinBaseURL).Msg("Starting bulletin session")
	session, err := client.Bootstrap(ctx)
	if err != nil {
		return err
	}

	scraper := remates.NewScraper(session, window, flags.pageSize, flags.limit, remates.StopWhenPageTooOld)

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLen,
		)
		defer redisPublisher.Close()
		pub = redisPublisher

		logger.ForPublisher().Info().
			Str("addr", cfg.RedisAddr).
			Int("db", cfg.RedisDB).
			Str("stream", cfg.RedisStream).
			Msg("Publishing records to Redis")
	}

	w := worker.NewWorker(scraper, pub, newWorkerLogger(cfg.ErrorLogPath), worker.Options{
		Keywords:     flags.keywords,
		MatchFields:  flags.matchFields,
		MatchMode:    mode,
		OnlyMatching: flags.onlyMatching,
		OutputPath:   flags.output,
		HTMLPath:     flags.htmlOutput,
	})

	result, err := w.Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("records", len(result.Records)).
		Int("persisted", result.Persisted).
		Int("pages", result.Stats.Pages).
		Int("duplicates", result.Stats.Duplicates).
		Int("document_errors", result.Stats.DocumentErrs).
		Msg("Run finished")
	return nil
}

func newBienesCmd(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bienes",
		Short: "Extrae licitaciones actuales de Bienes Nacionales",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := bienes.Scrape(cfg.BienesListURL)
			if err != nil {
				return err
			}
			if err := storage.WriteJSON(output, items); err != nil {
				return err
			}
			fmt.Printf("Se guardaron %d licitaciones en %s\n", len(items), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", cfg.BienesOutputPath, "ruta del archivo JSON a generar")
	return cmd
}

// workerLogger adapts the structured logger to the worker's logging seam.
// Errors additionally land in the error log file, which survives console
// scrollback on cron runs.
type workerLogger struct {
	log  *logger.Logger
	file *helpers.Logger
}

var _ helpers.LoggerInterface = (*workerLogger)(nil)

func newWorkerLogger(errorFile string) *workerLogger {
	return &workerLogger{
		log:  logger.ForWorker(),
		file: helpers.NewLogger(errorFile),
	}
}

func (l *workerLogger) LogError(source string, err error) {
	l.log.Error().Str("source", source).Err(err).Msg("Worker error")
	l.file.LogError(source, err)
}

func (l *workerLogger) LogInfo(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}
