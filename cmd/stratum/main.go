// Command stratum is the reference host for the language core: it
// wires lexer, parser, checker, compiler and VM together behind four
// subcommands. Like the teacher's own cmd/funxy/main.go, there is no
// cobra/urfave dependency here — just the standard library flag
// package dispatching on os.Args[1].
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/horizonanalytic/stratum/internal/cache"
	"github.com/horizonanalytic/stratum/internal/clihost"
	"github.com/horizonanalytic/stratum/internal/vm"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stratum <run|check|disasm|cache> [options] [file]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "run":
		err = cmdRun(os.Args[2:])
	case "check":
		err = cmdCheck(os.Args[2:])
	case "disasm":
		err = cmdDisasm(os.Args[2:])
	case "cache":
		err = cmdCache(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "stratum:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) clihost.Config {
	if path == "" {
		return clihost.DefaultConfig()
	}
	cfg, err := clihost.LoadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "stratum: config:", err)
		return clihost.DefaultConfig()
	}
	return cfg
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	useCache := fs.Bool("cache", false, "cache compiled bytecode by source hash")
	cachePath := fs.String("cache-file", ".stratum-cache.db", "compiled-bundle cache database path")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("run: missing source file")
	}
	path := fs.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	host := clihost.New(loadConfig(*configPath))
	out := clihost.NewRenderer(os.Stderr)
	start := time.Now()
	ctx := context.Background()

	if *useCache {
		store, err := cache.Open(*cachePath)
		if err != nil {
			return err
		}
		defer store.Close()
		hash := cache.Hash(source)
		if b, ok, err := store.Lookup(hash); err == nil && ok {
			_, runErr := host.RunCompiled(ctx, b.Main)
			out.RunSummary(len(source), time.Since(start))
			return runErr
		}
		res := clihost.Check(string(source))
		if len(res.Diagnostics) > 0 {
			out.Diagnostics(path, res.Diagnostics)
		}
		if res.Main == nil {
			return fmt.Errorf("run: compilation failed")
		}
		if err := store.Store(hash, path, &vm.Bundle{SourceFile: path, Main: res.Main}); err != nil {
			return err
		}
		_, runErr := host.RunCompiled(ctx, res.Main)
		out.RunSummary(len(source), time.Since(start))
		return runErr
	}

	_, diags, err := host.Run(ctx, string(source))
	if len(diags) > 0 {
		out.Diagnostics(path, diags)
	}
	out.RunSummary(len(source), time.Since(start))
	return err
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("check: missing source file")
	}
	path := fs.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res := clihost.Check(string(source))
	out := clihost.NewRenderer(os.Stderr)
	out.Diagnostics(path, res.Diagnostics)
	if len(res.Diagnostics) == 0 {
		fmt.Fprintln(os.Stdout, "ok")
	}
	return nil
}

func cmdDisasm(args []string) error {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("disasm: missing source file")
	}
	path := fs.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res := clihost.Check(string(source))
	out := clihost.NewRenderer(os.Stderr)
	if len(res.Diagnostics) > 0 {
		out.Diagnostics(path, res.Diagnostics)
	}
	if res.Main == nil {
		return fmt.Errorf("disasm: compilation failed")
	}
	fmt.Fprint(os.Stdout, vm.Disassemble(res.Main.Chunk, res.Main.Name))
	return nil
}

func cmdCache(args []string) error {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	cachePath := fs.String("cache-file", ".stratum-cache.db", "compiled-bundle cache database path")
	clear := fs.Bool("clear", false, "remove every cached bundle")
	fs.Parse(args)

	store, err := cache.Open(*cachePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if *clear {
		return store.Clear()
	}
	entries, err := store.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%s  %s  %s\n", e.Hash[:12], e.CachedAt.Format(time.RFC3339), e.SourceFile)
	}
	return nil
}
