package main

import (
	"context"
	"fmt"
	"os"

	"arrivatui/internal/arriva"
	"arrivatui/internal/config"
	"arrivatui/internal/selection"
	"arrivatui/internal/telemetry"
	"arrivatui/internal/ui"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultDebugLog = "arrivatui.log"

var exit = os.Exit
var cfgFile string

// runUI is swapped in tests so the root command can run without a terminal.
var runUI = ui.Run

var rootCmd = &cobra.Command{
	Use:   "arrivatui",
	Short: "Search Arriva Galicia bus trips from the terminal",
	Long: `arrivatui loads the Arriva Galicia stop catalogue, lets you pick an origin
and a destination, and shows the outward and return trips for the chosen date.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runInteractive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'arrivatui --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.Bool("debug", false, "Enable debug logging (to --log-file, default "+defaultDebugLog+")")
	flags.String("date", "", "Travel date as DD-MM-YYYY (default today)")
	flags.String("log-file", "", "Write JSON logs to this file")
	flags.String("timeout", "", "HTTP request timeout, e.g. 15s")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. localhost:2112")
	flags.String("gtfs", "", "Read stops from a GTFS static zip instead of the remote catalogue")
	flags.Bool("no-color", false, "Disable colors")

	viper.BindPFlag("debug", flags.Lookup("debug"))
	viper.BindPFlag("date", flags.Lookup("date"))
	viper.BindPFlag("log_file", flags.Lookup("log-file"))
	viper.BindPFlag("timeout", flags.Lookup("timeout"))
	viper.BindPFlag("metrics_addr", flags.Lookup("metrics-addr"))
	viper.BindPFlag("gtfs_path", flags.Lookup("gtfs"))
	viper.BindPFlag("no_color", flags.Lookup("no-color"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg       config.Config
	client    *arriva.Client
	catalogue selection.Catalogue
	registry  *prometheus.Registry
	metrics   *telemetry.Metrics
	closeLog  func() error
}

// close releases what setup opened. Callers defer it once setup succeeds.
func (a *app) close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
	}
}

// setup validates the configuration and wires logging, metrics and the HTTP client.
// Logs never go to stdout since every command writes its own output there.
func setup() (*app, error) {
	cfg := config.Current()
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logFile := cfg.LogFile
	if cfg.Debug && logFile == "" {
		logFile = defaultDebugLog
	}
	closeLog := telemetry.InitLogger(cfg.Debug, logFile, true)

	if cfg.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	client := arriva.NewClient(cfg.StopsURL, cfg.TripsURL, cfg.Timeout)
	client.UserAgent = cfg.UserAgent
	client.Metrics = metrics

	a := &app{
		cfg:       cfg,
		client:    client,
		catalogue: client,
		registry:  registry,
		metrics:   metrics,
		closeLog:  closeLog,
	}
	if cfg.GTFSPath != "" {
		a.catalogue = arriva.GTFSCatalogue{Path: cfg.GTFSPath}
	}

	telemetry.LogDebug("Configuration resolved", "client", client.String(), "gtfs", cfg.GTFSPath, "date", cfg.Date)
	return a, nil
}

// serveMetrics starts the metrics server when an address is configured.
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.MetricsAddr == "" {
		return
	}
	go func() {
		if err := telemetry.StartMetricsServer(ctx, a.cfg.MetricsAddr, a.registry); err != nil {
			telemetry.LogError("Metrics server failed", err, "addr", a.cfg.MetricsAddr)
		}
	}()
}

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	a.serveMetrics(ctx)

	fmt.Fprintln(cmd.ErrOrStderr(), "Loading stop catalogue...")
	stops, err := selection.LoadCatalogue(ctx, a.catalogue)
	if err != nil {
		return fmt.Errorf("failed to load stops: %w", err)
	}

	flow := selection.NewFlow(stops, selection.WithDate(a.cfg.Date), selection.WithMetrics(a.metrics))
	return runUI(ctx, flow, a.client, a.metrics)
}
