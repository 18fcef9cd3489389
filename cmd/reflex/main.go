// Command reflex runs instruction files and provides a REPL over the
// reflex runtime. Each line of REPL input is one YAML instruction mapping or
// a flow sequence of them, as accepted by package asm.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/peterh/liner"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/zephyrtronium/reflex/asm"
	// import for side effects
	_ "github.com/zephyrtronium/reflex/coreext"
	"github.com/zephyrtronium/reflex/internal"
)

func main() {
	var configPath, cpuProfile, memProfile string
	var trace bool
	flag.StringVar(&configPath, "config", "", "configuration file (default "+ConfigFileName+" if it exists)")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	flag.StringVar(&memProfile, "memprofile", "", "write a heap profile to this file on exit")
	flag.BoolVar(&trace, "trace", false, "log every dispatched instruction")
	flag.Parse()

	config, err := LoadConfig(orDefault(configPath, ConfigFileName), configPath != "")
	if err != nil {
		fail(err)
	}
	config.Trace = config.Trace || trace

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fail(err)
		}
		defer pprof.StopCPUProfile()
	}
	if memProfile != "" {
		defer writeHeapProfile(memProfile)
	}

	vm, err := NewVM(config)
	if err != nil {
		fail(err)
	}
	defer vm.Log.Sync()

	if flag.NArg() > 0 {
		for _, path := range flag.Args() {
			if err := runFile(vm, path); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				os.Exit(1)
			}
		}
		return
	}
	if err := repl(vm, config); err != nil {
		fail(err)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// NewVM creates a VM on a fresh registry according to config.
func NewVM(config *Config) (*internal.VM, error) {
	vm := internal.NewVM(internal.NewRegistry())
	vm.Out = os.Stdout
	if config.Trace {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		vm.Log = log
		vm.SetDebug(true)
	}
	vm.Sigil = config.SigilRune()
	if vm.Sigil != 0 {
		vm.Resolver = environment
	}
	for _, name := range config.Using {
		l, ok := vm.Registry.Library(name)
		if !ok {
			return nil, fmt.Errorf("no library named %s", name)
		}
		vm.Use(&l.Namespace)
	}
	return vm, nil
}

// environment resolves sigil identifiers to environment variables.
func environment(vm *internal.VM, name string) (internal.Data, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return internal.Data{}, internal.NewError(internal.SymbolNotFound, "no environment variable %s", name)
	}
	return vm.NewString(v), nil
}

func runFile(vm *internal.VM, path string) error {
	prog, err := asm.DecodeFile(vm.Registry, path)
	if err != nil {
		return err
	}
	r, err := vm.Execute(internal.InstructionList(prog))
	vm.Discard(r)
	return err
}

// repl runs an interactive session until the input ends.
func repl(vm *internal.VM, config *Config) error {
	src := internal.NewInteractiveSource()
	vm.Start(src)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return session(vm, src, plainReader(os.Stdin), os.Stderr)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	history := expandHome(config.History)
	if history != "" {
		if f, err := os.Open(history); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(history); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}
	read := func() (string, error) {
		line, err := ln.Prompt(config.Prompt)
		if err == liner.ErrPromptAborted {
			return "", io.EOF
		}
		if err == nil && line != "" {
			ln.AppendHistory(line)
		}
		return line, err
	}
	return session(vm, src, read, os.Stderr)
}

// session feeds lines to an interactive scope. Errors in a line are reported
// to errs, and the session continues.
func session(vm *internal.VM, src *internal.InteractiveSource, read func() (string, error), errs io.Writer) error {
	for n := 1; ; n++ {
		line, err := read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		prog, err := asm.DecodeStatement(vm.Registry, line)
		if err != nil {
			fmt.Fprintln(errs, err)
			continue
		}
		src.Append(n, prog...)
		if err := vm.Run(0); err != nil {
			fmt.Fprintln(errs, err)
		}
	}
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
