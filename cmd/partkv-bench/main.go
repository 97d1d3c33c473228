// Command partkv-bench replays a workload file against a partkv Store and
// reports throughput/status metrics as CSV, one row per second. It parses
// flags, traps SIGINT/SIGTERM for graceful shutdown, and writes to stdout
// or a target file.
//
// © 2025 partkv authors. MIT License.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Voskan/partkv"
)

var version = "dev"

type options struct {
	workload   string
	out        string
	variant    string
	partitions int
	paths      string
	trackEvery time.Duration
	repartEvery time.Duration
	showVersion bool
}

func parseFlags() *options {
	o := &options{}
	flag.StringVar(&o.workload, "workload", "", "path to a workload file (required)")
	flag.StringVar(&o.out, "out", "", "metrics CSV output path (default: stdout)")
	flag.StringVar(&o.variant, "variant", "soft", "soft|hard|soft-threaded|hard-threaded")
	flag.IntVar(&o.partitions, "partitions", 8, "number of shards")
	flag.StringVar(&o.paths, "paths", "", "comma-separated on-disk paths (Hard: shards round-robin across them; Soft: first path only; empty = in-memory)")
	flag.DurationVar(&o.trackEvery, "tracking-duration", 0, "how long each repartition cycle tracks before repartitioning")
	flag.DurationVar(&o.repartEvery, "repartition-interval", 0, "sleep between repartition cycles")
	flag.BoolVar(&o.showVersion, "version", false, "print version and exit")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Println(version)
		return
	}
	if opts.workload == "" {
		fatal(fmt.Errorf("-workload is required"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, opts *options) error {
	variant, err := parseVariant(opts.variant)
	if err != nil {
		return err
	}

	storeOpts := []partkv.Option{}
	if opts.paths != "" {
		storeOpts = append(storeOpts, partkv.WithPaths(strings.Split(opts.paths, ",")))
	}
	if opts.trackEvery > 0 && opts.repartEvery > 0 {
		storeOpts = append(storeOpts,
			partkv.WithTrackingDuration(opts.trackEvery),
			partkv.WithRepartitionInterval(opts.repartEvery),
		)
	}

	store, err := partkv.New(variant, opts.partitions, hashKey, storeOpts...)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	wf, err := os.Open(opts.workload)
	if err != nil {
		return fmt.Errorf("open workload: %w", err)
	}
	defer wf.Close()

	out := os.Stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create metrics output: %w", err)
		}
		defer f.Close()
		out = f
	}

	return replay(ctx, store, wf, out)
}

func replay(ctx context.Context, store *partkv.Store, workload *os.File, out *os.File) error {
	fmt.Fprintln(out, "elapsed_time_ms,executed_count,memory_kb,disk_kb,Tracking,Repartitioning")

	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	done := make(chan error, 1)
	go func() { done <- executeWorkload(ctx, store, workload) }()

	for {
		select {
		case <-ticker.C:
			writeMetricsRow(out, store, start)
		case err := <-done:
			writeMetricsRow(out, store, start)
			return err
		case <-ctx.Done():
			writeMetricsRow(out, store, start)
			return ctx.Err()
		}
	}
}

func writeMetricsRow(out *os.File, store *partkv.Store, start time.Time) {
	tracking := "x"
	if store.IsTracking() {
		tracking = "o"
	}
	repartitioning := "x"
	if store.IsRepartitioning() {
		repartitioning = "o"
	}
	fmt.Fprintf(out, "%d,%d,%d,%d,%s,%s\n",
		time.Since(start).Milliseconds(),
		store.OperationCount(),
		0, // memory_kb: left to an external profiler; the store tracks op counts, not RSS
		0, // disk_kb: engine-specific; badgerengine exposes no size API in this pack
		tracking,
		repartitioning,
	)
}

var oneKiBValue = []byte(strings.Repeat("*", 1024))

func executeWorkload(ctx context.Context, store *partkv.Store, f *os.File) error {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		switch fields[0] {
		case "0":
			if _, _, err := store.Read(ctx, fields[1]); err != nil {
				return fmt.Errorf("read %q: %w", fields[1], err)
			}
		case "1":
			if _, err := store.Write(ctx, fields[1], oneKiBValue); err != nil {
				return fmt.Errorf("write %q: %w", fields[1], err)
			}
		case "2":
			limit, err := strconv.Atoi(fields[2])
			if err != nil {
				return fmt.Errorf("scan limit %q: %w", fields[2], err)
			}
			if _, _, err := store.Scan(ctx, fields[1], limit); err != nil {
				return fmt.Errorf("scan %q: %w", fields[1], err)
			}
		default:
			return fmt.Errorf("unknown workload op %q", fields[0])
		}
	}
	return scanner.Err()
}

func parseVariant(s string) (partkv.Variant, error) {
	switch s {
	case "soft":
		return partkv.VariantSoft, nil
	case "hard":
		return partkv.VariantHard, nil
	case "soft-threaded":
		return partkv.VariantSoftThreaded, nil
	case "hard-threaded":
		return partkv.VariantHardThreaded, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", s)
	}
}

// hashKey is FNV-1a, used as the driver's default stable keyed hash.
func hashKey(key string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= prime64
	}
	return h
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "partkv-bench:", err)
	os.Exit(1)
}
