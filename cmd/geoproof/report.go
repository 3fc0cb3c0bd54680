package main

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/chazu/geoproof/pkg/batch"
	"github.com/chazu/geoproof/pkg/derive"
	"github.com/chazu/geoproof/pkg/engine"
	"github.com/chazu/geoproof/pkg/theorem"
)

type report struct {
	Problems []problemReport `yaml:"problems"`
}

type problemReport struct {
	Name       string             `yaml:"name"`
	File       string             `yaml:"file"`
	Errors     []string           `yaml:"errors,omitempty"`
	Proven     []proofReport      `yaml:"proven,omitempty"`
	Unproven   []unresolvedReport `yaml:"unproven,omitempty"`
	Discovered []unresolvedReport `yaml:"discovered,omitempty"`
}

type proofReport struct {
	Theorem  string        `yaml:"theorem"`
	Rule     string        `yaml:"rule"`
	Premises []proofReport `yaml:"premises,omitempty"`
}

type unresolvedReport struct {
	Theorem  string          `yaml:"theorem"`
	Attempts []attemptReport `yaml:"attempts,omitempty"`
}

type attemptReport struct {
	Rule     string             `yaml:"rule"`
	Proven   []string           `yaml:"proven,omitempty"`
	Unproven []unresolvedReport `yaml:"unproven,omitempty"`
}

// newProblemReport renders a prover result with the problem's object names.
// Proven targets are listed under the statement as written in the problem.
func newProblemReport(file string, p *engine.Problem, res batch.Result) problemReport {
	pr := problemReport{Name: res.Name, File: file}
	if res.Err != nil {
		pr.Errors = []string{res.Err.Error()}
		return pr
	}
	out := res.Output
	for _, t := range p.Targets {
		if proof := out.Proof(t); proof != nil {
			r := renderProof(p, proof)
			r.Theorem = p.Format(t)
			pr.Proven = append(pr.Proven, r)
		}
	}
	for _, u := range out.Unproven {
		pr.Unproven = append(pr.Unproven, renderUnresolved(p, u))
	}
	for _, u := range out.Discovered {
		pr.Discovered = append(pr.Discovered, renderUnresolved(p, u))
	}
	return pr
}

func renderProof(p *engine.Problem, proof *derive.Proof) proofReport {
	r := proofReport{Theorem: p.Format(proof.Theorem), Rule: proof.Rule.Explanation()}
	for _, q := range proof.Premises {
		r.Premises = append(r.Premises, renderProof(p, q))
	}
	return r
}

func renderUnresolved(p *engine.Problem, u derive.Unresolved) unresolvedReport {
	r := unresolvedReport{Theorem: p.Format(u.Theorem)}
	for _, a := range u.Attempts {
		ar := attemptReport{Rule: a.Rule.Explanation()}
		for _, q := range a.Proven {
			ar.Proven = append(ar.Proven, p.Format(q.Theorem))
		}
		for _, v := range a.Unproven {
			ar.Unproven = append(ar.Unproven, renderUnresolved(p, v))
		}
		r.Attempts = append(r.Attempts, ar)
	}
	return r
}

func formatAll(p *engine.Problem, ts []theorem.Theorem) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = p.Format(t)
	}
	return out
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
