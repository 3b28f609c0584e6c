// Command index_builder builds a postings/lexicon/forward index from a
// stemmed token stream and a raw document TSV.
//
//	index_builder <stemmed.txt> <raw_text.tsv> <index_dir> [hash_capacity]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/corpuslex/corpuslex/internal/indexbuilder"
	"github.com/corpuslex/corpuslex/internal/indexbuilder/worker"
	"github.com/corpuslex/corpuslex/pkg/config"
	"github.com/corpuslex/corpuslex/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "optional path to a config file for --serve mode")
	termStatsPath := flag.String("term-stats", "", "optional path to write a term,postings_count CSV")
	serve := flag.Bool("serve", false, "run as a long-lived worker consuming build requests instead of a one-shot build")
	flag.Parse()

	if *serve {
		runServe(*configPath)
		return
	}

	args := flag.Args()
	if len(args) < 3 || len(args) > 4 {
		fmt.Fprintln(os.Stderr, "usage: index_builder <stemmed.txt> <raw_text.tsv> <index_dir> [hash_capacity]")
		os.Exit(1)
	}

	var hashCapacity uint32
	if len(args) == 4 {
		n, err := strconv.ParseUint(args[3], 10, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid hash_capacity %q: %v\n", args[3], err)
			os.Exit(1)
		}
		hashCapacity = uint32(n)
	}

	stats, err := indexbuilder.Build(args[0], args[1], args[2], hashCapacity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "index_builder: %v\n", err)
		os.Exit(1)
	}

	if *termStatsPath != "" {
		if err := indexbuilder.WriteTermStats(*termStatsPath, args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "index_builder: writing term stats: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("documents_indexed=%d\n", stats.DocumentsIndexed)
	fmt.Printf("tokens_seen=%d\n", stats.TokensSeen)
	fmt.Printf("unique_terms=%d\n", stats.UniqueTerms)
	fmt.Printf("total_postings=%d\n", stats.TotalPostings)
	fmt.Printf("docs_with_meta=%d\n", stats.DocsWithMeta)
}

func runServe(configPath string) {
	if configPath == "" {
		configPath = "configs/development.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	w, err := worker.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start build worker: %v\n", err)
		os.Exit(1)
	}
	if err := w.Run(); err != nil && !errors.Is(err, worker.ErrStopped) {
		fmt.Fprintf(os.Stderr, "build worker stopped with error: %v\n", err)
		os.Exit(1)
	}
}
