// Command search_cli evaluates boolean queries against a loaded index.
//
//	search_cli --index-dir <dir> [--query <q>] [--offset <n>] [--limit <n>]
//
// Without --query, queries are read from standard input, one per line,
// until EOF; each line is echoed as QUERY\t<line> before its result
// block.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/corpuslex/corpuslex/internal/queryengine"
)

func main() {
	indexDir := flag.String("index-dir", "", "path to a directory containing postings.bin, lexicon.bin and forward.bin")
	query := flag.String("query", "", "query string; if omitted, queries are read from stdin")
	offset := flag.Int("offset", 0, "pagination offset")
	limit := flag.Int("limit", 50, "pagination limit")
	flag.Parse()

	if *indexDir == "" {
		fmt.Fprintln(os.Stderr, "search_cli: --index-dir is required")
		os.Exit(1)
	}

	engine, err := queryengine.Load(*indexDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search_cli: %v\n", err)
		os.Exit(1)
	}

	if *query != "" {
		if err := runQuery(engine, *query, *offset, *limit, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "search_cli: %v\n", err)
			os.Exit(1)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if !first {
			fmt.Println()
		}
		first = false
		fmt.Printf("QUERY\t%s\n", line)
		if err := runQuery(engine, line, *offset, *limit, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "search_cli: %v\n", err)
			os.Exit(1)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "search_cli: reading stdin: %v\n", err)
		os.Exit(1)
	}
}

func runQuery(engine *queryengine.Engine, query string, offset, limit int, out *os.File) error {
	result, err := engine.Search(query)
	if err != nil {
		return err
	}
	page := result.Paginate(offset, limit)
	return engine.WritePage(out, page)
}
