package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"sort"
	"time"

	"exchangeclient/internal/journal"
	"exchangeclient/internal/obs"
	"exchangeclient/internal/ops"
	"exchangeclient/pkg/exchange"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

func main() {
	envFile := flag.String("env", ".env", "Path to env file (skipped when missing)")
	configPath := flag.String("config", "", "Path to JSON config")
	flag.Parse()

	cfg, err := ops.Load(*envFile, *configPath)
	if err != nil {
		logs.Errorf("config load failed, err: %+v", err)
		os.Exit(1)
	}

	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	if cfg.PyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "exchangeclient.trader",
			ServerAddress:   cfg.PyroscopeAddr,
			Tags:            map[string]string{"user": cfg.Username},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logs.Errorf("pyroscope start failed, err: %+v", err)
			os.Exit(1)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg)
	}

	if err := run(context.Background(), cfg, reg); err != nil {
		logs.Errorf("trader failed, err: %+v", err)
		exitCode = 1
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	logs.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logs.Errorf("metrics server stopped, err: %+v", err)
	}
}

func run(ctx context.Context, cfg ops.Config, reg prometheus.Registerer) error {
	metrics := obs.NewMetrics(reg)
	exCfg := cfg.Exchange()
	exCfg.Metrics = metrics

	if cfg.InfoOnly {
		client, err := exchange.NewInfoOnly(exCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.Connect(ctx, cfg.AdminPassword); err != nil {
			return err
		}
		return loop(cfg.ReportInterval, client.Err, func() { reportBooks(ctx, client) })
	}

	if cfg.JournalDSN != "" {
		w, closeJournal, err := openJournal(ctx, cfg.JournalDSN, metrics)
		if err != nil {
			return err
		}
		defer closeJournal()
		exCfg.Journal = w
	}

	client, err := exchange.New(exCfg)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Connect(ctx, cfg.Credentials()); err != nil {
		return err
	}
	return loop(cfg.ReportInterval, client.Err, func() { reportPositions(ctx, client) })
}

func openJournal(ctx context.Context, dsn string, metrics *obs.Metrics) (*journal.Writer, func(), error) {
	store, err := journal.OpenPostgres(ctx, journal.PostgresOption{ConnString: dsn})
	if err != nil {
		return nil, nil, err
	}
	w, err := journal.NewWriter(store, journal.Config{}, metrics)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	if err := w.Start(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return w, func() {
		if err := w.Close(); err != nil {
			logs.Errorf("journal close, err: %+v", err)
		}
		_ = store.Close()
	}, nil
}

// loop reports every interval until shutdown or until the session dies.
func loop(interval time.Duration, fatal func() error, report func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report()
	for {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown signal received")
			return nil
		case <-ticker.C:
			if err := fatal(); err != nil {
				return errors.Wrap(err, "session terminated")
			}
			report()
		}
	}
}

func reportPositions(ctx context.Context, client *exchange.Exchange) {
	positions, err := client.PositionsAndCash(ctx)
	if err != nil {
		logs.Errorf("positions, err: %+v", err)
		return
	}
	for _, id := range sortedKeys(positions) {
		p := positions[id]
		logs.Infof("position %s: volume %d, cash %.2f", id, p.Volume, p.Cash)
	}

	cash, err := client.Cash(ctx)
	if err != nil {
		logs.Errorf("cash, err: %+v", err)
		return
	}
	valuations := map[string]float64{}
	for id := range positions {
		book, ok, err := client.LatestBook(ctx, id)
		if err != nil || !ok {
			continue
		}
		if vwap, ok := exchange.CalculateVWAP(book); ok {
			valuations[id] = vwap
		}
	}
	pnl, err := client.PnL(ctx, valuations)
	if err != nil {
		logs.Infof("cash %.2f, pnl unavailable: %v", cash, err)
		return
	}
	logs.Infof("cash %.2f, pnl %.2f", cash, pnl)
}

func reportBooks(ctx context.Context, client *exchange.InfoOnly) {
	instruments, err := client.Instruments(ctx)
	if err != nil {
		logs.Errorf("instruments, err: %+v", err)
		return
	}
	for _, id := range sortedKeys(instruments) {
		book, ok, err := client.LatestBook(ctx, id)
		if err != nil || !ok {
			continue
		}
		vwap, _ := exchange.CalculateVWAP(book)
		logs.Infof("book %s: %d bids, %d asks, vwap %.2f, paused %t", id, len(book.Bids), len(book.Asks), vwap, instruments[id].Paused)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
