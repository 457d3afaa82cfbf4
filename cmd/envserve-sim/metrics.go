//go:build !rp2040

package main

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"envserve-go/services/diag"
	"envserve-go/types"

	humanize "github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func counterFunc(name, help string, v *atomic.Uint32) prometheus.CounterFunc {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "envserve",
		Name:      name,
		Help:      help,
	}, func() float64 { return float64(v.Load()) })
}

// newRegistry exports the control loop counters.
func newRegistry(cnt *types.Counters) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		counterFunc("cycles_total", "Completed acquisition cycles.", &cnt.Cycles),
		counterFunc("transport_failures_total", "Failed sensor read transactions.", &cnt.TransportFailures),
		counterFunc("requests_served_total", "Pages written to clients.", &cnt.Served),
		counterFunc("reconnects_total", "Link losses detected.", &cnt.Reconnects),
		counterFunc("page_overflows_total", "Page builds rejected for exceeding capacity.", &cnt.Overflows),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "envserve",
			Name:      "page_bytes",
			Help:      "Size of the page currently served.",
		}, func() float64 { return float64(cnt.PageBytes.Load()) }),
	)
	return reg
}

// serveMetrics runs the metrics endpoint until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log *diag.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		log.Log("metrics", "serving on", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Log("metrics", "stopped:", err)
		}
	}()
}

func statsLine(cnt *types.Counters) []any {
	return []any{
		"cycles", humanize.Comma(int64(cnt.Cycles.Load())),
		"served", humanize.Comma(int64(cnt.Served.Load())),
		"failures", int(cnt.TransportFailures.Load()),
		"reconnects", int(cnt.Reconnects.Load()),
		"page", humanize.Bytes(uint64(cnt.PageBytes.Load())),
	}
}

// logStats writes a stats line every d until ctx is done.
func logStats(ctx context.Context, d time.Duration, cnt *types.Counters, log *diag.Logger) {
	if d <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				log.Log("stats", statsLine(cnt)...)
			}
		}
	}()
}
