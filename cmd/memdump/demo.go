package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/memdebug"
	"github.com/hupe1980/memdebug/arena"
	"github.com/hupe1980/memdebug/prommetrics"
	"github.com/hupe1980/memdebug/snapshot"
	"github.com/hupe1980/memdebug/sysalloc"
	"github.com/hupe1980/memdebug/testutil"
)

type demoConfig struct {
	out         string
	workers     int
	iterations  int
	leakEvery   int
	allocator   string
	compression string
}

func newDemoCmd(g *globalFlags) *cobra.Command {
	cfg := demoConfig{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a tracked workload with deliberate leaks and save a snapshot",
		Long: `The demo command runs concurrent workers that allocate, resize and
release tracked buffers, leaking every n-th allocation. Each worker also
builds a scratch arena. The remaining live set is written as a snapshot.

Example:
  memdump demo --out heap.mdsn
  memdump demo --out heap.mdsn --allocator offheap --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, g, cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.out, "out", "o", "heap.mdsn", "Snapshot output file")
	cmd.Flags().IntVar(&cfg.workers, "workers", 4, "Number of concurrent workers")
	cmd.Flags().IntVar(&cfg.iterations, "iterations", 1000, "Allocations per worker")
	cmd.Flags().IntVar(&cfg.leakEvery, "leak-every", 100, "Leak every n-th allocation (0 disables leaks)")
	cmd.Flags().StringVar(&cfg.allocator, "allocator", "heap", "System allocator (heap, offheap, mmap)")
	cmd.Flags().StringVar(&cfg.compression, "compression", "zstd", "Snapshot compression (none, lz4, zstd)")
	return cmd
}

func newAllocator(name string) (sysalloc.Allocator, error) {
	switch name {
	case "heap", "":
		return sysalloc.NewHeap(), nil
	case "offheap":
		return sysalloc.NewOffHeap(), nil
	case "mmap":
		return sysalloc.NewMmap(), nil
	default:
		return nil, fmt.Errorf("unknown allocator %q", name)
	}
}

func runDemo(cmd *cobra.Command, g *globalFlags, cfg demoConfig) error {
	comp, err := snapshot.ParseCompression(cfg.compression)
	if err != nil {
		return err
	}
	alloc, err := newAllocator(cfg.allocator)
	if err != nil {
		return err
	}

	metrics, err := prommetrics.New(prometheus.NewRegistry(), "memdump")
	if err != nil {
		return err
	}

	logger := memdebug.NoopLogger()
	if g.verbose {
		logger = memdebug.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	d := memdebug.New(
		memdebug.WithAllocator(alloc),
		memdebug.WithOutput(cmd.OutOrStdout()),
		memdebug.WithLogger(logger),
		memdebug.WithTraceRate(100, 10),
		memdebug.WithMetricsCollector(metrics),
	)
	defer d.Close()

	var eg errgroup.Group
	for w := range cfg.workers {
		eg.Go(func() error {
			work(d, w, cfg)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	snap := snapshot.Capture(d)
	if err := snapshot.Save(cfg.out, snap, snapshot.WithCompression(comp)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return writeSummary(cmd.OutOrStdout(), cfg.out, snap)
}

// work runs one worker's share of the demo workload.
func work(d *memdebug.Debugger, id int, cfg demoConfig) {
	rng := testutil.NewRNG(int64(id) + 1)

	scratch := arena.Create(d, fmt.Sprintf("worker-%d", id), arena.WithRegionSize(16*1024))
	defer scratch.Destroy()

	for i, size := range rng.Sizes(cfg.iterations, 1024) {
		b := d.Malloc(size)
		tmp := scratch.Alloc(size / 4)
		copy(tmp, b)

		if cfg.leakEvery > 0 && i%cfg.leakEvery == 0 {
			continue
		}
		b = d.Realloc(b, size*2)
		d.Free(b)
		scratch.Pop(size / 4)
	}
}

func writeSummary(w io.Writer, path string, s *snapshot.Snapshot) error {
	t := s.Totals()
	_, err := fmt.Fprintf(w, "Wrote %s: %d live allocations totalling %d bytes\n", path, t.Count, t.Bytes)
	return err
}
