package engine

import (
	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/prover"
	"github.com/chazu/geoproof/pkg/theorem"
)

// Problem is the result of evaluating a problem file.
type Problem struct {
	Name          string
	Configuration *geom.Configuration
	// Facts are statements verified for this configuration.
	Facts []theorem.Theorem
	// Trivial are statements true in every configuration.
	Trivial []theorem.Theorem
	// Assumed are statements proved earlier for a smaller configuration.
	Assumed []theorem.Theorem
	Targets []theorem.Theorem
}

func newProblem() *Problem {
	return &Problem{Configuration: geom.NewConfiguration()}
}

// Input converts the problem into prover input. The verifier is left nil so
// the prover checks new facts against the stated ones.
func (p *Problem) Input() prover.Input {
	return prover.Input{
		Configuration: p.Configuration,
		Facts:         p.Facts,
		Trivial:       p.Trivial,
		Smaller:       p.Assumed,
		Targets:       p.Targets,
	}
}

// Format renders t with the problem's object names.
func (p *Problem) Format(t theorem.Theorem) string {
	return t.Format(p.Configuration.Name)
}
