// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command resolve solves a package-dependency graph described in a TOML
// file against a set of top-level constraints and prints the result.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pkgdag/resolver"
	"github.com/pkgdag/resolver/version"
)

// command mirrors the teacher's cmd/dep command interface, trimmed to
// what this single-purpose CLI needs.
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	Register(*flag.FlagSet)
	Run(*Loggers, []string) error
}

func main() {
	c := &Config{
		Args:   os.Args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(c.Run())
}

// Config specifies a full configuration for a resolve execution, the same
// shape as the teacher's cmd/dep Config.
type Config struct {
	Args           []string
	Stdout, Stderr *os.File
}

func (c *Config) Run() (exitCode int) {
	commands := []command{
		&solveCommand{},
	}

	loggers := &Loggers{
		Out: log.New(c.Stdout, "", 0),
		Err: log.New(c.Stderr, "", 0),
	}

	if len(c.Args) < 2 {
		usage(loggers, commands)
		return 1
	}

	cmdName := c.Args[1]
	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}
		fs := flag.NewFlagSet(cmdName, flag.ExitOnError)
		cmd.Register(fs)
		fs.BoolVar(&loggers.Verbose, "verbose", false, "enable verbose (debug) logging")
		if err := fs.Parse(c.Args[2:]); err != nil {
			return 1
		}
		if err := cmd.Run(loggers, fs.Args()); err != nil {
			loggers.Err.Println(err)
			return 1
		}
		return 0
	}

	loggers.Err.Printf("unknown command %q\n", cmdName)
	usage(loggers, commands)
	return 1
}

func usage(l *Loggers, commands []command) {
	l.Err.Println("Usage: resolve <command> [arguments]")
	l.Err.Println()
	for _, cmd := range commands {
		l.Err.Printf("  %-8s %-24s %s\n", cmd.Name(), cmd.Args(), cmd.ShortHelp())
	}
}

type solveCommand struct {
	timeoutMS       int
	backtrackBudget int
}

func (c *solveCommand) Name() string      { return "solve" }
func (c *solveCommand) Args() string      { return "<graph.toml>" }
func (c *solveCommand) ShortHelp() string { return "solve the graph described in a TOML file" }

func (c *solveCommand) Register(fs *flag.FlagSet) {
	fs.IntVar(&c.timeoutMS, "timeout-ms", 0, "abort the solve after this many milliseconds (0 disables)")
	fs.IntVar(&c.backtrackBudget, "backtrack-budget", 0, "abort the solve after this many backtracks (0 disables)")
}

func (c *solveCommand) Run(l *Loggers, args []string) error {
	if len(args) != 1 {
		return errors.New("solve requires exactly one argument: the path to a graph TOML file")
	}

	body, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "reading %s", args[0])
	}

	raw, err := loadGraphFile(body)
	if err != nil {
		return errors.Wrap(err, "decoding graph file")
	}

	graph, constraints, err := buildGraph(raw)
	if err != nil {
		return errors.Wrap(err, "building dependency graph")
	}

	logger := logrus.New()
	if l.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	var opts []resolver.SelectorOption
	if c.timeoutMS > 0 {
		opts = append(opts, resolver.WithTimeout(time.Duration(c.timeoutMS)*time.Millisecond))
	}
	if c.backtrackBudget > 0 {
		opts = append(opts, resolver.WithBacktrackBudget(c.backtrackBudget))
	}

	sel := resolver.NewSelector(graph, logger)
	assignment, err := sel.FindSolution(constraints, opts...)
	if err != nil {
		// NoSolutionExists.Error() is already a complete, human-readable
		// explanation; InvalidSolutionConstraints and TimeBoundExceeded
		// render just as directly. Nothing here needs further formatting.
		return err
	}

	for _, name := range assignment.Names() {
		if v, ok := assignment.Version(name); ok {
			l.Out.Printf("%s = %s\n", name, v)
		}
	}
	return nil
}

func buildGraph(raw rawGraph) (*resolver.Graph, []resolver.SolutionConstraint, error) {
	g := resolver.NewGraph()

	for _, rp := range raw.Packages {
		pkg := g.Package(rp.Name)
		for _, rv := range rp.Versions {
			v, err := version.Parse(rv.Number)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "package %s version %q", rp.Name, rv.Number)
			}
			pv := pkg.AddVersion(v)
			for _, rd := range rv.Dependencies {
				c, err := version.ParseConstraint(rd.Constraint)
				if err != nil {
					return nil, nil, errors.Wrapf(err, "package %s version %s dependency on %s", rp.Name, rv.Number, rd.Target)
				}
				pv.AddDependency(g.Package(rd.Target), c)
			}
		}
	}

	constraints := make([]resolver.SolutionConstraint, 0, len(raw.Constraints))
	for _, rc := range raw.Constraints {
		c, err := version.ParseConstraint(rc.Constraint)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "top-level constraint on %s", rc.Package)
		}
		constraints = append(constraints, resolver.SolutionConstraint{
			Package:    g.Package(rc.Package),
			Constraint: c,
		})
	}

	return g, constraints, nil
}
