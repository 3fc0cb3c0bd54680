package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/geoproof/pkg/geom"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a problem file without proving it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

type finding struct {
	Severity string `yaml:"severity"`
	Object   string `yaml:"object,omitempty"`
	Message  string `yaml:"message"`
}

type validation struct {
	Name     string    `yaml:"name"`
	Objects  int       `yaml:"objects"`
	Targets  []string  `yaml:"targets,omitempty"`
	Findings []finding `yaml:"findings,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	lp := loadProblem(args[0])
	if lp.problem == nil {
		for _, e := range lp.errors {
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}
		return fmt.Errorf("%s: evaluation failed", args[0])
	}
	p := lp.problem
	cfg := p.Configuration

	v := validation{
		Name:    p.Name,
		Objects: cfg.Len(),
		Targets: formatAll(p, p.Targets),
	}
	findings := geom.Validate(cfg)
	for _, f := range findings {
		fd := finding{Severity: f.Severity.String(), Message: f.Message}
		if !f.Object.IsZero() {
			fd.Object = cfg.Name(f.Object)
		}
		v.Findings = append(v.Findings, fd)
	}
	for _, t := range p.Targets {
		if t.IsDegenerate() {
			v.Findings = append(v.Findings, finding{
				Severity: geom.SeverityWarning.String(),
				Message:  fmt.Sprintf("target %s is degenerate", p.Format(t)),
			})
		}
	}

	if err := writeYAML(cmd.OutOrStdout(), v); err != nil {
		return err
	}
	if geom.HasErrors(findings) {
		return fmt.Errorf("%s: configuration has errors", args[0])
	}
	return nil
}
