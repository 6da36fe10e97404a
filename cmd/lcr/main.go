package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lcr/internal/config"
	"github.com/standardbeagle/lcr/internal/debug"
	"github.com/standardbeagle/lcr/internal/mcp"
	"github.com/standardbeagle/lcr/internal/ops"
	"github.com/standardbeagle/lcr/internal/session"
	"github.com/standardbeagle/lcr/internal/types"
	"github.com/standardbeagle/lcr/internal/version"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// loadConfigWithOverrides loads .lcr.kdl from the project root and applies
// CLI flag overrides on top.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := config.LoadFile(absRoot)
	if err != nil {
		return nil, err
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Load.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Load.Exclude = append(cfg.Load.Exclude, excludeFlags...)
	}
	return cfg, nil
}

// openEngine opens a session for the duration of one CLI command.
func openEngine(ctx context.Context, c *cli.Context) (*ops.Engine, func(), error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ops.NewEngine(sess), func() { _ = sess.Close() }, nil
}

// locatorFromFlags builds the symbol locator shared by the query commands.
// Relative file paths are resolved against the project root before the
// engine sees them.
func locatorFromFlags(c *cli.Context, root string) ops.QueryRequest {
	return ops.QueryRequest{
		Path:   pathutil.ToAbsolute(c.String("file"), root),
		Line:   c.Int("line"),
		Column: c.Int("column"),
		Symbol: c.String("symbol"),
	}
}

func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	app := &cli.App{
		Name:                   "lcr",
		Usage:                  "Transactional symbol refactoring for Go, C#, Python, and JavaScript projects",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (default: current directory)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Glob patterns of files to load (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Glob patterns of files to skip (appended to config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "rename",
				Usage: "Rename a symbol and every reference to it",
				Flags: append(locatorFlags(),
					&cli.StringFlag{
						Name:     "new-name",
						Aliases:  []string{"n"},
						Usage:    "Replacement identifier",
						Required: true,
					},
					&cli.BoolFlag{
						Name:    "preview",
						Aliases: []string{"p"},
						Usage:   "Show the change without writing anything",
					},
					&cli.BoolFlag{
						Name:  "rename-file",
						Usage: "Also rename the declaring file when its name matches the symbol",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the full result record as JSON",
					},
				),
				Action: renameCommand,
			},
			{
				Name:    "references",
				Aliases: []string{"refs"},
				Usage:   "List every reference to a symbol",
				Flags: append(locatorFlags(), &cli.BoolFlag{
					Name:  "json",
					Usage: "Emit the full result record as JSON",
				}),
				Action: referencesCommand,
			},
			{
				Name:  "resolve",
				Usage: "Resolve a symbol by position or name",
				Flags: append(locatorFlags(), &cli.BoolFlag{
					Name:  "json",
					Usage: "Emit the full result record as JSON",
				}),
				Action: resolveCommand,
			},
			{
				Name:   "status",
				Usage:  "Show the open project's shape and snapshot state",
				Action: statusCommand,
			},
			{
				Name:   "serve",
				Usage:  "Run the MCP server on stdio",
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func locatorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "File containing the symbol",
			Required: true,
		},
		&cli.IntFlag{
			Name:    "line",
			Aliases: []string{"l"},
			Usage:   "1-based line of the symbol (omit for name-based lookup)",
		},
		&cli.IntFlag{
			Name:  "column",
			Usage: "1-based column of the symbol",
		},
		&cli.StringFlag{
			Name:    "symbol",
			Aliases: []string{"s"},
			Usage:   "Symbol name for name-based lookup",
		},
	}
}

func renameCommand(c *cli.Context) error {
	ctx := c.Context
	engine, cleanup, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	root := engine.Session().Config().Project.Root
	loc := locatorFromFlags(c, root)
	result := engine.Rename(ctx, ops.RenameRequest{
		Path:       loc.Path,
		Line:       loc.Line,
		Column:     loc.Column,
		Symbol:     loc.Symbol,
		NewName:    c.String("new-name"),
		Preview:    c.Bool("preview"),
		RenameFile: c.Bool("rename-file"),
	})

	if c.Bool("json") {
		return emitJSON(result)
	}

	if !result.Success {
		printOperationError(result.Error)
		os.Exit(1)
	}
	if result.Preview {
		for _, ch := range result.Changes {
			fmt.Print(ch.Diff)
		}
		fmt.Printf("%d references across %d files (preview, nothing written)\n",
			result.ReferenceCount, len(result.Changes))
		return nil
	}
	fmt.Printf("Renamed %d references (%d created, %d modified, %d deleted)\n",
		result.ReferenceCount, len(result.FilesCreated), len(result.FilesModified), len(result.FilesDeleted))
	if result.Warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", result.Warning)
	}
	return nil
}

func referencesCommand(c *cli.Context) error {
	ctx := c.Context
	engine, cleanup, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	root := engine.Session().Config().Project.Root
	result := engine.References(ctx, locatorFromFlags(c, root))

	if c.Bool("json") {
		return emitJSON(result)
	}
	if !result.Success {
		printOperationError(result.Error)
		os.Exit(1)
	}
	for _, site := range result.Sites {
		fmt.Printf("%s:%d:%d  %s\n",
			pathutil.ToRelative(site.Path, root), site.Line, site.Column, site.Kind)
	}
	fmt.Printf("%d references\n", result.TotalCount)
	return nil
}

func resolveCommand(c *cli.Context) error {
	ctx := c.Context
	engine, cleanup, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	root := engine.Session().Config().Project.Root
	result := engine.Resolve(ctx, locatorFromFlags(c, root))

	if c.Bool("json") {
		return emitJSON(result)
	}
	if !result.Success {
		printOperationError(result.Error)
		os.Exit(1)
	}
	sym := result.Symbol
	fmt.Printf("%s %s\n", sym.Kind, sym.QualifiedName)
	for _, decl := range sym.Declarations {
		fmt.Printf("  declared at %s:%d:%d\n",
			pathutil.ToRelative(decl.Path, root), decl.Line, decl.Column)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := c.Context
	engine, cleanup, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	return emitJSON(engine.Status())
}

func serveCommand(c *cli.Context) error {
	// Suppress all debug output on stdio while speaking the protocol
	debug.SetMCPMode(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, cleanup, err := openEngine(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	return mcp.NewServer(engine).Start(ctx)
}

func printOperationError(opErr *types.OperationError) {
	if opErr == nil {
		fmt.Fprintln(os.Stderr, "operation failed")
		return
	}
	fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", opErr.Code, opErr.Message)
	for _, hint := range opErr.Remediations {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}
}
