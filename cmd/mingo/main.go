package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mingo-db/mingo/internal/grammar"
	"github.com/mingo-db/mingo/internal/output"
	"github.com/mingo-db/mingo/internal/parser"
	"github.com/mingo-db/mingo/internal/planner"
	"github.com/mingo-db/mingo/internal/runtime"
	"github.com/mingo-db/mingo/internal/session"
	"github.com/mingo-db/mingo/internal/store"
	"github.com/mingo-db/mingo/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Exit codes: 0 success, 1 internal error, 4 execution error, 5 parse or
// validation error.
const (
	exitInternal  = 1
	exitExecution = 4
	exitParse     = 5
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		dryRun      = flag.Bool("dry-run", false, "Print the execution plan without executing")
		tuiMode     = flag.Bool("tui", false, "Launch the interactive operation builder")
		dbName      = flag.String("db", "", "Load the named database snapshot, save it back after mutations")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mingo [flags] '<collection>.<method>(arguments)'\n\n")
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  mingo 'users.insertOne({\"name\": \"Ada\", \"age\": 36})'\n")
		fmt.Fprintf(os.Stderr, "  mingo -db demo 'users.find({\"age\": {\"$gte\": 30}})'\n")
		fmt.Fprintf(os.Stderr, "  mingo explain 'users.deleteMany({\"retired\": true})'\n\n")
		fmt.Fprintf(os.Stderr, "Subcommands: help [method], explain <operation>, dbs\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		fmt.Printf("mingo version %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	st := store.New()
	if *dbName != "" {
		collections, err := session.Load(*dbName)
		if err != nil {
			printError(err)
			os.Exit(exitInternal)
		}
		if collections != nil {
			st.Restore(collections)
		}
	}
	exec := runtime.NewExecutor(st)

	args := flag.Args()

	// No operation, or -tui: the interactive builder owns the terminal.
	if *tuiMode || len(args) == 0 {
		if err := tui.Launch(exec); err != nil {
			printError(err)
			os.Exit(exitInternal)
		}
		saveSnapshot(*dbName, st)
		return
	}

	switch args[0] {
	case "help":
		if len(args) > 1 {
			help, ok := grammar.FormatMethodHelp(args[1])
			if !ok {
				fmt.Fprintf(os.Stderr, "Unknown method %q. Supported: %s\n", args[1], strings.Join(grammar.Names(), ", "))
				os.Exit(exitParse)
			}
			fmt.Print(help)
			return
		}
		fmt.Print(grammar.FormatHelp())
		return

	case "explain":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: mingo explain '<collection>.<method>(arguments)'\n")
			os.Exit(exitParse)
		}
		if err := explainOperation(strings.Join(args[1:], " ")); err != nil {
			printError(err)
			os.Exit(exitParse)
		}
		return

	case "dbs":
		names, err := session.List()
		if err != nil {
			printError(err)
			os.Exit(exitInternal)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	// An operation string may arrive split across arguments when the user
	// skipped shell quoting; rejoin before parsing.
	operation := strings.Join(args, " ")

	call, err := parser.Parse(operation)
	if err != nil {
		printError(err)
		os.Exit(exitParse)
	}

	plan, err := planner.Plan(call)
	if err != nil {
		printError(err)
		os.Exit(exitParse)
	}

	if *dryRun {
		formatted, err := output.FormatPlan(plan)
		if err != nil {
			printError(fmt.Errorf("failed to format plan: %w", err))
			os.Exit(exitInternal)
		}
		fmt.Println(string(formatted))
		return
	}

	result, err := exec.Execute(plan)
	if err != nil {
		printError(err)
		os.Exit(exitExecution)
	}

	rendered, err := output.FormatResult(result.Payload())
	if err != nil {
		printError(fmt.Errorf("failed to render result: %w", err))
		os.Exit(exitInternal)
	}
	if rendered != "" {
		fmt.Println(rendered)
	}

	if result.Mutated {
		saveSnapshot(*dbName, st)
	}
}

// saveSnapshot writes the store back to the named snapshot, if one is in
// use.
func saveSnapshot(name string, st *store.Store) {
	if name == "" {
		return
	}
	if err := session.Save(name, st.Dump()); err != nil {
		printError(err)
		os.Exit(exitInternal)
	}
}

// explainOperation prints the execution plan for an operation without
// running it.
func explainOperation(operation string) error {
	call, err := parser.Parse(operation)
	if err != nil {
		return err
	}
	plan, err := planner.Plan(call)
	if err != nil {
		return err
	}
	formatted, err := output.FormatPlan(plan)
	if err != nil {
		return fmt.Errorf("failed to format plan: %w", err)
	}
	fmt.Println(string(formatted))
	return nil
}

// printError prints an error with a hint for near-miss method names.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var unsupportedErr *parser.UnsupportedMethodError
	if errors.As(err, &unsupportedErr) && unsupportedErr.Suggest != "" {
		fmt.Fprintf(os.Stderr, "Hint: try %q\n", unsupportedErr.Suggest)
	}
}
