package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"slabtrader/internal/aggregator"
	"slabtrader/internal/codec"
	"slabtrader/internal/gateway"
	"slabtrader/internal/journal"
	"slabtrader/internal/obs"
	"slabtrader/internal/ops"
	"slabtrader/internal/portfolio"
	"slabtrader/internal/router"
	"slabtrader/internal/schema"
	"slabtrader/pkg/exception"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	instrument := flag.String("instrument", "", "Instrument name from config")
	sideArg := flag.String("side", "", "Trade side: buy or sell (empty = quote only)")
	qtyArg := flag.String("qty", "", "Input quantity, e.g. 2.5")
	leverageArg := flag.Uint("leverage", 1, "Leverage multiplier [1, 10]")
	orderTypeArg := flag.String("type", "limit", "Order type: limit or market")
	portfolioArg := flag.String("portfolio", "", "Portfolio address (hex) for the netted view")
	watch := flag.Duration("watch", 0, "Refresh interval (0 = one shot)")
	flag.Parse()

	if *instrument == "" {
		log.Fatal("instrument is required")
	}

	cfg, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	instrPk, ok := cfg.Instruments[*instrument]
	if !ok {
		log.Fatalf("unknown instrument: %s", *instrument)
	}

	if cfg.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "slabtrader",
			ServerAddress:   cfg.Profiling.ServerURL,
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer profiler.Stop()
	}

	var jnl *journal.Journal
	if cfg.JournalDSN != "" {
		jnl, err = journal.Open(cfg.JournalDSN)
		if err != nil {
			log.Fatalf("journal open failed: %v", err)
		}
		defer jnl.Close()
	}

	metrics := obs.NewMetrics()
	// One second covers the snapshot-load-then-quote-fetch double read
	// of each slab without serving a whole refresh cycle from cache.
	gw := gateway.NewCachedGateway(gateway.NewRPCClient(cfg.Endpoint, nil), metrics, time.Second)
	agg := aggregator.New(gw, metrics, cfg.MaxStaleness)

	ctx := context.Background()
	run := func() error {
		return runOnce(ctx, cfg, gw, agg, jnl, metrics, instrPk, *instrument,
			*sideArg, *qtyArg, uint8(*leverageArg), *orderTypeArg, *portfolioArg)
	}

	if err := run(); err != nil {
		log.Fatalf("run failed: %v", err)
	}
	if *watch <= 0 {
		return
	}

	ticker := time.NewTicker(*watch)
	defer ticker.Stop()
	for {
		select {
		case <-sys.Shutdown():
			snap := metrics.Snapshot()
			logs.Infof("shutting down. fetches ok=%d dropped=%d stale=%d cache hit=%d miss=%d latency=%+v",
				snap.VenueFetchOK, snap.VenueFetchDropped, snap.VenueFetchStale,
				snap.CacheHits, snap.CacheMisses, snap.FetchLatency)
			return
		case <-ticker.C:
			if err := run(); err != nil {
				logs.Errorf("refresh failed: %+v", err)
			}
		}
	}
}

func runOnce(ctx context.Context, cfg ops.Loaded, gw gateway.Gateway, agg *aggregator.Aggregator, jnl *journal.Journal, metrics *obs.Metrics, instrPk schema.Pubkey, instrument, sideArg, qtyArg string, leverage uint8, orderTypeArg, portfolioArg string) error {
	snap, err := aggregator.LoadSnapshot(ctx, gw, cfg.Registry)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	venues := aggregator.ListVenues(snap, instrPk)
	if len(venues) == 0 {
		return exception.ErrNoLiquidity
	}

	quotes, err := agg.FetchQuotes(ctx, venues)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}
	printQuotes(instrument, quotes)

	var equity *schema.Collateral
	if portfolioArg != "" {
		eq, err := printNettedView(ctx, gw, jnl, snap, portfolioArg)
		if err != nil {
			return err
		}
		equity = &eq
	}
	if sideArg == "" {
		return nil
	}
	return routeTrade(cfg, jnl, metrics, quotes, instrument, sideArg, qtyArg, leverage, orderTypeArg, equity)
}

func printQuotes(instrument string, quotes []aggregator.Quote) {
	fmt.Printf("%s: %d venue(s)\n", instrument, len(quotes))
	for _, q := range quotes {
		var bid, ask schema.QuoteLevel
		if len(q.Slab.Quotes.Bids) > 0 {
			bid = q.Slab.Quotes.Bids[0]
		}
		if len(q.Slab.Quotes.Asks) > 0 {
			ask = q.Slab.Quotes.Asks[0]
		}
		fmt.Printf("  venue %-3d %s  bid %s x %s  ask %s x %s  oracle %s\n",
			q.Venue.Index, q.Venue.SlabID.Short(),
			bid.Price.Decimal(), bid.AvailQty.Decimal(),
			ask.Price.Decimal(), ask.AvailQty.Decimal(),
			q.Oracle.Price.Decimal())
	}
}

func routeTrade(cfg ops.Loaded, jnl *journal.Journal, metrics *obs.Metrics, quotes []aggregator.Quote, instrument, sideArg, qtyArg string, leverage uint8, orderTypeArg string, equity *schema.Collateral) error {
	side, err := parseSide(sideArg)
	if err != nil {
		return err
	}
	orderType, err := parseOrderType(orderTypeArg)
	if err != nil {
		return err
	}
	qty, err := parseScaled(qtyArg)
	if err != nil {
		return fmt.Errorf("parse qty: %w", err)
	}

	start := time.Now()
	plan, err := buildPlan(quotes, side, qty)
	metrics.ObserveRoute(time.Since(start))
	if err != nil {
		return err
	}
	if equity != nil {
		tp, err := portfolio.ValidateTrade(*equity, qty, plan[0].Price, leverage)
		if err != nil {
			return err
		}
		fmt.Printf("validated: mode %s  margin %s  position size %s  actual qty %s  max qty %s\n",
			tp.Mode, tp.MarginCommitted.Decimal(), tp.PositionSize.Decimal(),
			tp.ActualQuantity.Decimal(),
			portfolio.MaxQuantity(*equity, plan[0].Price).Decimal())
	}
	fmt.Printf("plan: %d leg(s)\n", len(plan))
	for _, f := range plan {
		fmt.Printf("  venue %-3d %s x %s\n", f.Venue.Index, f.Price.Decimal(), f.Quantity.Decimal())
	}

	// Receipt and position addresses are program-derived; the signer
	// layer fills them in before submission.
	placeholders := make([]schema.Pubkey, len(plan))
	ix, err := router.SplitToInstruction(cfg.RouterProgram, plan, side, orderType, leverage, router.PlanAccounts{
		Registry:    cfg.Registry,
		SlabProgram: cfg.SlabProgram,
		Receipts:    placeholders,
		Positions:   placeholders,
	})
	if err != nil {
		return err
	}
	fmt.Printf("unsigned payload: %s\n", hex.EncodeToString(ix.Data))

	if err := jnl.RecordPlan(instrument, side, orderType, leverage, plan); err != nil {
		logs.Warnf("journal plan failed: %+v", err)
	}
	return nil
}

func buildPlan(quotes []aggregator.Quote, side schema.Side, qty schema.Quantity) ([]router.Fill, error) {
	best, err := router.FindBestVenue(quotes, side, qty)
	if err == nil {
		return []router.Fill{best}, nil
	}
	if !errors.Is(err, exception.ErrInsufficientLiquidity) {
		return nil, err
	}
	return router.BuildOptimalSplit(quotes, side, qty)
}

func printNettedView(ctx context.Context, gw gateway.Gateway, jnl *journal.Journal, snap schema.Snapshot, portfolioArg string) (schema.Collateral, error) {
	addr, err := schema.PubkeyFromHex(portfolioArg)
	if err != nil {
		return 0, fmt.Errorf("parse portfolio address: %w", err)
	}
	raw, err := gw.ReadAccount(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("read portfolio: %w", err)
	}
	p, err := codec.DecodePortfolio(raw)
	if err != nil {
		return 0, fmt.Errorf("decode portfolio: %w", err)
	}
	if !portfolio.Consistent(p) {
		logs.Warnf("portfolio %s violates equity = principal + pnl", addr.Short())
	}

	marks := make(map[schema.Pubkey]schema.Price)
	for _, v := range snap.Venues() {
		marks[v.Instrument] = v.Slab.MarkPrice
	}
	netted, err := portfolio.Net(p, snap, nil, marks)
	if err != nil {
		return 0, err
	}

	fmt.Printf("portfolio %s  equity %s\n", addr.Short(),
		schema.Collateral(p.Equity.Int64()).Decimal())
	for _, n := range netted {
		fmt.Printf("  %s  net %s  entry %s  uPnL %s  legs %d\n",
			n.Instrument.Short(), n.NetQuantity.Decimal(),
			n.AvgEntryPrice.Decimal(), schema.Quantity(n.UnrealizedPnl).Decimal(), n.Legs)
	}
	if err := jnl.RecordNetted(netted); err != nil {
		logs.Warnf("journal netted view failed: %+v", err)
	}
	return schema.Collateral(p.Equity.Int64()), nil
}

func parseSide(s string) (schema.Side, error) {
	switch s {
	case "buy":
		return schema.SideBuy, nil
	case "sell":
		return schema.SideSell, nil
	default:
		return 0, exception.ErrInvalidSide
	}
}

func parseOrderType(s string) (schema.OrderType, error) {
	switch s {
	case "limit":
		return schema.OrderTypeLimit, nil
	case "market":
		return schema.OrderTypeMarket, nil
	default:
		return 0, fmt.Errorf("unknown order type: %s", s)
	}
}

func parseScaled(s string) (schema.Quantity, error) {
	if s == "" {
		return 0, exception.ErrInvalidQuantity
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, exception.ErrInvalidQuantity
	}
	return schema.Quantity(f * float64(schema.PriceScale)), nil
}
