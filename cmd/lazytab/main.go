package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazytab/internal/app"
	"github.com/rebeliceyang/lazytab/internal/config"
	"github.com/rebeliceyang/lazytab/internal/dataset"
	"github.com/rebeliceyang/lazytab/internal/source"
	"github.com/rebeliceyang/lazytab/internal/store"
	"github.com/rebeliceyang/lazytab/internal/styling"
)

func main() {
	dsn := flag.String("dsn", "", "Postgres connection string (load data from a query instead of a CSV file)")
	query := flag.String("query", "", "SQL query to load when --dsn is set")
	stylesPath := flag.String("styles", "", "Path to a style set JSON file")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	tbl, name, err := loadTable(*dsn, *query, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer tbl.Release()

	var styleSet *styling.StyleSet
	if *stylesPath != "" {
		styleSet, err = loadStyleSet(*stylesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading style set: %v\n", err)
			os.Exit(1)
		}
	}

	var lib *store.Store
	if cfg.Library.Enabled {
		path, err := cfg.LibraryPath()
		if err != nil {
			log.Printf("Warning: filter library disabled: %v\n", err)
		} else if lib, err = store.NewStore(path); err != nil {
			log.Printf("Warning: filter library disabled: %v\n", err)
			lib = nil
		}
	}
	if lib != nil {
		defer lib.Close()
	}

	a := app.New(cfg, name, tbl, styleSet, lib)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(a, opts...)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

// loadTable loads the dataset from a Postgres query when dsn is set,
// otherwise from the CSV file argument.
func loadTable(dsn, query, csvPath string) (*dataset.Table, string, error) {
	if dsn != "" {
		if query == "" {
			return nil, "", fmt.Errorf("--dsn requires --query")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tbl, err := source.QueryTable(ctx, dsn, query)
		if err != nil {
			return nil, "", err
		}
		return tbl, "query", nil
	}

	if csvPath == "" {
		return nil, "", fmt.Errorf("no input: pass a CSV file or --dsn with --query")
	}

	tbl, err := dataset.OpenCSV(csvPath)
	if err != nil {
		return nil, "", err
	}
	return tbl, filepath.Base(csvPath), nil
}

func loadStyleSet(path string) (*styling.StyleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var set styling.StyleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: lazytab [flags] [file.csv]\n\n")
	fmt.Fprintf(os.Stderr, "Interactively filter and style tabular data.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
