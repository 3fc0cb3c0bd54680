package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chazu/geoproof/pkg/batch"
	"github.com/chazu/geoproof/pkg/engine"
	"github.com/chazu/geoproof/pkg/prover"
	"github.com/chazu/geoproof/pkg/rules"
)

var proveCmd = &cobra.Command{
	Use:   "prove FILE...",
	Short: "Prove the targets of problem files",
	Long: `Evaluate each problem file, derive as many targets as possible and
print a YAML report with the proofs, the unproven targets with their
attempted derivations, and the statements discovered along the way.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProve,
}

func init() {
	flags := proveCmd.Flags()
	flags.StringP("output", "o", "", "write the report to a file instead of stdout")
	flags.StringSlice("strategy", nil, "strategies to run (default all)")
	flags.Bool("audit", false, "re-check provability with a Datalog evaluation")
	flags.Bool("flatten", true, "collapse transitivity chains in proofs")
	flags.IntP("jobs", "j", 4, "problems proved in parallel")
	flags.Int("passes", prover.DefaultSubtheoremPasses, "subtheorem matching passes")
	_ = viper.BindPFlag("audit_proofs", flags.Lookup("audit"))
	_ = viper.BindPFlag("flatten_transitivity", flags.Lookup("flatten"))
	_ = viper.BindPFlag("parallelism", flags.Lookup("jobs"))
	_ = viper.BindPFlag("subtheorem_passes", flags.Lookup("passes"))
}

// loadedProblem is an evaluated problem file.
type loadedProblem struct {
	file    string
	problem *engine.Problem
	errors  []string
}

func runProve(cmd *cobra.Command, args []string) error {
	names, _ := cmd.Flags().GetStringSlice("strategy")
	strategies, err := selectStrategies(names)
	if err != nil {
		return err
	}

	loaded := make([]loadedProblem, len(args))
	var jobs []batch.Job
	for i, file := range args {
		loaded[i] = loadProblem(file)
		if loaded[i].problem != nil {
			jobs = append(jobs, batch.Job{Name: loaded[i].problem.Name, Input: loaded[i].problem.Input()})
		}
	}

	runner := &batch.Runner{
		NewProver: func() *prover.Prover {
			return prover.New(prover.Config{
				Strategies:          strategies,
				SubtheoremPasses:    settings.SubtheoremPasses,
				FlattenTransitivity: settings.FlattenTransitivity,
				AuditProofs:         settings.AuditProofs,
				Logger:              logger.Named("prover"),
			})
		},
		Limit:  settings.Parallelism,
		Logger: logger,
	}
	results, err := runner.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	var rep report
	failed := 0
	next := 0
	for _, lp := range loaded {
		if lp.problem == nil {
			rep.Problems = append(rep.Problems, problemReport{Name: problemName(lp.file), File: lp.file, Errors: lp.errors})
			failed++
			continue
		}
		res := results[next]
		next++
		if res.Err != nil {
			failed++
		}
		rep.Problems = append(rep.Problems, newProblemReport(lp.file, lp.problem, res))
	}

	if err := emitReport(cmd, rep); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d problems failed", failed, len(args))
	}
	return nil
}

func emitReport(cmd *cobra.Command, rep report) error {
	path, _ := cmd.Flags().GetString("output")
	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeYAML(w, rep); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// loadProblem reads and evaluates one file. Read and evaluation failures
// are recorded on the result rather than aborting the run.
func loadProblem(file string) loadedProblem {
	lp := loadedProblem{file: file}
	src, err := os.ReadFile(file)
	if err != nil {
		lp.errors = []string{err.Error()}
		return lp
	}

	eng := engine.NewEngine()
	eng.Timeout = settings.EvalTimeout
	p, evalErrs, err := eng.Evaluate(string(src))
	switch {
	case err != nil:
		lp.errors = []string{err.Error()}
	case len(evalErrs) > 0:
		for _, e := range evalErrs {
			lp.errors = append(lp.errors, e.Error())
		}
	default:
		if p.Name == "" {
			p.Name = problemName(file)
		}
		lp.problem = p
	}
	if lp.problem == nil {
		logger.Warn("Problem file rejected", zap.String("file", file), zap.Strings("errors", lp.errors))
	}
	return lp
}

func problemName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}

func selectStrategies(names []string) ([]prover.Strategy, error) {
	if len(names) == 0 {
		return rules.Default(), nil
	}
	strategies := make([]prover.Strategy, 0, len(names))
	for _, name := range names {
		s := rules.Lookup(name)
		if s == nil {
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}
