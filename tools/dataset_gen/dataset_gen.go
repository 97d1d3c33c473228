// Command dataset_gen generates a deterministic workload file for
// cmd/partkv-bench: one line per operation, keys drawn from a uniform or
// Zipf distribution over a fixed key space.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 1000000 -dist=zipf -seed=42 -out workload.txt
//
// Flags:
//
//	-n        number of operations to generate (default 1e6)
//	-dist     key distribution: "uniform" or "zipf" (default uniform)
//	-zipfs    Zipf s parameter (>1) (default 1.2)
//	-zipfv    Zipf v parameter (>=1) (default 1.0)
//	-keyspace number of distinct keys the distribution is drawn over (default 100000)
//	-read     relative weight of read ops (default 80)
//	-write    relative weight of write ops (default 15)
//	-scan     relative weight of scan ops (default 5)
//	-limit    scan limit to emit for scan ops (default 10)
//	-seed     RNG seed (default current time)
//	-out      output file (default stdout)
//
// © 2025 partkv authors. MIT License.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

func main() {
	var (
		n        = flag.Int("n", 1_000_000, "number of operations to generate")
		dist     = flag.String("dist", "uniform", "key distribution: uniform or zipf")
		zipfS    = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV    = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		keyspace = flag.Uint64("keyspace", 100_000, "distinct key count the distribution ranges over")
		readW    = flag.Int("read", 80, "relative weight of read ops")
		writeW   = flag.Int("write", 15, "relative weight of write ops")
		scanW    = flag.Int("scan", 5, "relative weight of scan ops")
		scanLim  = flag.Int("limit", 10, "scan limit emitted for scan ops")
		seedVal  = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath  = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	rnd := rand.New(rand.NewSource(*seedVal))

	var gen func() uint64
	switch *dist {
	case "uniform":
		gen = func() uint64 { return rnd.Uint64() % *keyspace }
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1.0 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, *keyspace-1)
		gen = z.Uint64
	default:
		fmt.Fprintln(os.Stderr, "unknown dist:", *dist)
		os.Exit(1)
	}

	totalW := *readW + *writeW + *scanW
	if totalW <= 0 {
		fmt.Fprintln(os.Stderr, "read+write+scan weights must sum to > 0")
		os.Exit(1)
	}

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	for i := 0; i < *n; i++ {
		key := fmt.Sprintf("key-%d", gen())
		switch pick := rnd.Intn(totalW); {
		case pick < *readW:
			fmt.Fprintf(w, "0,%s\n", key)
		case pick < *readW+*writeW:
			fmt.Fprintf(w, "1,%s\n", key)
		default:
			fmt.Fprintf(w, "2,%s,%d\n", key, *scanLim)
		}
	}
}
