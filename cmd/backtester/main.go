package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backtester/api"
	"backtester/backtest"
	"backtester/fetcher"
	"backtester/web"
)

// Version is injected by build scripts via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("backtester", flag.ContinueOnError)

	var (
		configPath = fs.String("config", "", "YAML config file")
		symbol     = fs.String("symbol", "", "ticker symbol (sh600000, sz000001, or US ticker with -provider alpaca)")
		start      = fs.String("start", "", "start date YYYY-MM-DD")
		end        = fs.String("end", "", "end date YYYY-MM-DD")
		cash       = fs.Float64("cash", 0, "starting capital")
		short      = fs.Int("short", 0, "short MA window (days)")
		long       = fs.Int("long", 0, "long MA window (days)")

		providerName = fs.String("provider", "", "price provider: eastmoney | alpaca | csv")
		csvDir       = fs.String("csv-dir", "", "directory of <symbol>.csv files for -provider csv")
		cachePath    = fs.String("cache", "", "sqlite price cache path (empty disables caching)")

		sweepShort = fs.String("sweep-short", "", "comma-separated short windows; with -sweep-long runs a sweep")
		sweepLong  = fs.String("sweep-long", "", "comma-separated long windows")

		chartOut  = fs.String("chart", "", "write the three-panel SVG chart to this path")
		tradesOut = fs.String("trades", "", "write the trade log CSV to this path")

		serve   = fs.Bool("serve", false, "start the web dashboard instead of a one-shot run")
		port    = fs.Int("port", 0, "dashboard port (default 8089)")
		version = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *version {
		fmt.Println("backtester", Version)
		return nil
	}

	var yc *backtest.YAMLConfig
	if *configPath != "" {
		var err error
		yc, err = backtest.LoadConfig(*configPath)
		if err != nil {
			return err
		}
	} else {
		yc = &backtest.YAMLConfig{}
	}

	cfg, err := yc.RunConfig()
	if err != nil {
		return err
	}
	// Flags override the file.
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *cash != 0 {
		cfg.InitialCash = decimal.NewFromFloat(*cash)
	}
	if *short != 0 {
		cfg.ShortWindow = *short
	}
	if *long != 0 {
		cfg.LongWindow = *long
	}
	if *start != "" {
		if cfg.Start, err = parseDate(*start); err != nil {
			return fmt.Errorf("invalid -start: %w", err)
		}
	}
	if *end != "" {
		if cfg.End, err = parseDate(*end); err != nil {
			return fmt.Errorf("invalid -end: %w", err)
		}
	}

	prov := yc.Provider
	if *providerName != "" {
		prov.Type = *providerName
	}
	if *csvDir != "" {
		prov.CSVDir = *csvDir
	}
	if *cachePath != "" {
		prov.CachePath = *cachePath
	}

	provider, cleanup, err := buildProvider(prov)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := backtest.NewRunner(provider)

	if *serve {
		p := *port
		if p == 0 {
			p = yc.Server.Port
		}
		if p == 0 {
			p = 8089
		}
		return runServer(runner, p)
	}

	ctx := context.Background()

	if *sweepShort != "" || *sweepLong != "" {
		shorts, err := parseIntList(*sweepShort)
		if err != nil {
			return fmt.Errorf("invalid -sweep-short: %w", err)
		}
		longs, err := parseIntList(*sweepLong)
		if err != nil {
			return fmt.Errorf("invalid -sweep-long: %w", err)
		}
		results, err := runner.Sweep(ctx, cfg, shorts, longs)
		if err != nil {
			return err
		}
		backtest.WriteSweepSummary(os.Stdout, cfg.Symbol, results)
		return nil
	}

	res, err := runner.Run(ctx, cfg)
	if err != nil {
		return err
	}
	backtest.WriteSummary(os.Stdout, res)

	if *tradesOut != "" {
		if err := backtest.WriteTradesCSVFile(*tradesOut, res.Trades); err != nil {
			return fmt.Errorf("write trades csv: %w", err)
		}
		log.Printf("[cli] trade log written to %s", *tradesOut)
	}
	if *chartOut != "" {
		svg, err := backtest.RenderResultSVG(res, backtest.SVGChartOptions{})
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		if err := os.WriteFile(*chartOut, svg, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		log.Printf("[cli] chart written to %s", *chartOut)
	}
	return nil
}

// buildProvider wires the configured price source, optionally wrapped in the
// sqlite cache. cleanup closes the cache database when one was opened.
func buildProvider(pc backtest.ProviderConfig) (backtest.PriceProvider, func(), error) {
	var upstream backtest.PriceProvider
	switch pc.Type {
	case "", "eastmoney":
		upstream = fetcher.NewEastMoney()
	case "alpaca":
		if pc.Alpaca.APIKey == "" || pc.Alpaca.APISecret == "" {
			return nil, nil, fmt.Errorf("provider alpaca needs api_key and api_secret in config")
		}
		upstream = fetcher.NewAlpaca(pc.Alpaca.APIKey, pc.Alpaca.APISecret, pc.Alpaca.BaseURL)
	case "csv":
		if pc.CSVDir == "" {
			return nil, nil, fmt.Errorf("provider csv needs -csv-dir")
		}
		upstream = fetcher.NewCSVProvider(pc.CSVDir)
	default:
		return nil, nil, fmt.Errorf("unknown provider: %s", pc.Type)
	}

	if pc.CachePath == "" {
		return upstream, func() {}, nil
	}
	cached, err := fetcher.NewCachedProvider(upstream, pc.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return cached, func() { cached.Close() }, nil
}

func runServer(runner *backtest.Runner, port int) error {
	store := api.NewRunStore(100)
	handler := api.NewHandler(runner, store, fetcher.NewNameResolver())
	server := api.NewServer(handler, port, web.Static)
	return server.Start()
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
