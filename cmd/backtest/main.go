// Command backtest replays one or more tick files through the execution
// engine and prints every emitted event to stderr as structured log lines.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hindsight/internal/collab"
	"hindsight/internal/common"
	"hindsight/internal/config"
	"hindsight/internal/engine"
	"hindsight/internal/events"
	"hindsight/internal/replay"
)

func main() {
	var (
		tickFiles   = flag.String("ticks", "", "comma-separated tick CSV file paths")
		capital     = flag.Float64("capital", 100000, "starting capital")
		currency    = flag.String("currency", "USD", "account currency")
		commission  = flag.Float64("commission-bp", 0, "commission rate in basis points")
		rolloverCSV = flag.String("rollover-csv", "", "path to overnight interest rate CSV")
		workers     = flag.Int("workers", 8, "concurrent tick-file parsers")
		symbol      = flag.String("symbol", "EURUSD", "instrument symbol")
		tickSize    = flag.Float64("tick-size", 0.00001, "instrument tick size")
	)
	flag.Parse()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if *tickFiles == "" {
		log.Fatal().Msg("backtest: -ticks is required")
	}

	catalog := common.NewCatalog(common.Instrument{
		Symbol:         *symbol,
		QuoteCurrency:  (*symbol)[3:],
		SecurityType:   common.FX,
		TickSize:       *tickSize,
		PricePrecision: 5,
		MinTradeSize:   1,
		MaxTradeSize:   10_000_000,
		MinStopTicks:   5,
		MinLimitTicks:  5,
	})

	opts := []config.Option{config.WithCommissionRateBP(*commission)}
	if *rolloverCSV != "" {
		opts = append(opts, config.WithShortTermInterestCSV(*rolloverCSV))
	}
	cfg := config.New(*capital, *currency, opts...)

	db := collab.NewInMemoryExecutionDatabase()
	sink := loggingSink{}

	engOpts := []engine.Option{engine.WithExecutionDatabase(db)}
	if cfg.ShortTermInterestCSVPath != "" {
		rolloverCalc, err := collab.NewCSVRolloverCalculator(cfg.ShortTermInterestCSVPath)
		if err != nil {
			log.Fatal().Err(err).Msg("backtest: loading rollover csv")
		}
		engOpts = append(engOpts, engine.WithRolloverCalculator(rolloverCalc))
	}
	eng := engine.New(cfg, catalog, "ACC-1", sink, engOpts...)

	loader := replay.NewLoader(*workers)
	ticks, err := loader.LoadTicks(context.Background(), strings.Split(*tickFiles, ","), replay.NewCSVTickParser(5))
	if err != nil {
		log.Fatal().Err(err).Msg("backtest: loading tick files")
	}
	log.Info().Int("ticks", len(ticks)).Msg("loaded tick sequence")

	for _, tick := range ticks {
		eng.ProcessTick(tick)
	}

	os.Exit(0)
}

// loggingSink prints every emitted event as a structured log line.
type loggingSink struct{}

func (loggingSink) HandleEvent(ev events.Event) {
	log.Info().
		Str("kind", ev.Kind()).
		Str("event_id", ev.EventID()).
		Time("event_time", ev.EventTime()).
		Msg("event")
}
