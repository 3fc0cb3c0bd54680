package prover

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/geoproof/pkg/derive"
	"github.com/chazu/geoproof/pkg/geom"
	"github.com/chazu/geoproof/pkg/normalize"
	"github.com/chazu/geoproof/pkg/theorem"
	"github.com/chazu/geoproof/pkg/tracker"
	"github.com/chazu/geoproof/pkg/verify"
)

// DefaultSubtheoremPasses is the number of subtheorem matching passes.
const DefaultSubtheoremPasses = 2

// Config configures a Prover.
type Config struct {
	Strategies []Strategy
	// Matcher may be nil, in which case no templates are matched.
	Matcher   SubtheoremMatcher
	Templates []Template
	// SubtheoremPasses defaults to DefaultSubtheoremPasses when zero.
	SubtheoremPasses    int
	FlattenTransitivity bool
	// AuditProofs re-checks provability with a Datalog evaluation.
	AuditProofs bool
	Logger      *zap.Logger
}

// Prover resolves problems. A Prover holds no per-problem state, so one
// value may serve concurrent Prove calls on different inputs.
type Prover struct {
	cfg    Config
	logger *zap.Logger
}

// New returns a prover.
func New(cfg Config) *Prover {
	if cfg.SubtheoremPasses == 0 {
		cfg.SubtheoremPasses = DefaultSubtheoremPasses
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prover{cfg: cfg, logger: logger}
}

// Prove runs the derivation pipeline on one problem. Malformed input is
// reported as an error wrapping ErrMalformedInput.
func (p *Prover) Prove(in Input) (out *Output, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var nErr *normalize.MalformedInputError
		var tErr *tracker.MalformedInputError
		if e, ok := r.(error); ok && (errors.As(e, &nErr) || errors.As(e, &tErr)) {
			out, err = nil, fmt.Errorf("%w: %w", ErrMalformedInput, e)
			return
		}
		panic(r)
	}()

	if err := checkInput(in); err != nil {
		return nil, err
	}
	verifier := in.Verifier
	if verifier == nil {
		table := verify.NewTable(in.Facts...)
		for _, t := range in.Trivial {
			table.Add(t)
		}
		for _, t := range in.Smaller {
			table.Add(t)
		}
		verifier = table
	}

	r := &run{
		Prover:  p,
		kb:      derive.NewKnowledgeBase(),
		tracker: tracker.New(),
		helper:  normalize.New(in.Configuration, verifier, p.logger),
		pool:    theorem.NewSet(),
	}
	r.seed(in)
	r.runStrategies()
	r.matchSubtheorems(in.Targets)
	r.registerTransitivity()
	out = r.resolve(in.Targets)

	if p.cfg.AuditProofs {
		if err := derive.Audit(r.kb); err != nil {
			return nil, fmt.Errorf("audit proofs: %w", err)
		}
	}
	p.logger.Debug("knowledge base resolved",
		zap.Int("records", r.kb.Len()),
		zap.Int("proven", len(out.Proven)),
		zap.Int("unproven", len(out.Unproven)),
		zap.Int("discovered", len(out.Discovered)))
	return out, nil
}

func checkInput(in Input) error {
	if in.Configuration == nil {
		return fmt.Errorf("%w: no configuration", ErrMalformedInput)
	}
	for _, f := range geom.Validate(in.Configuration) {
		if f.Severity == geom.SeverityError {
			return fmt.Errorf("%w: %w", ErrMalformedInput, f)
		}
	}
	for _, list := range [][]theorem.Theorem{in.Facts, in.Trivial, in.Smaller, in.Targets} {
		for _, t := range list {
			if err := t.Check(); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrMalformedInput, t, err)
			}
			for _, id := range t.ConfigurationObjects() {
				if !in.Configuration.IsOriginal(id) {
					return fmt.Errorf("%w: %s references unknown object %s", ErrMalformedInput, t, id)
				}
			}
		}
	}
	return nil
}

// run is the state of one Prove call.
type run struct {
	*Prover
	kb      *derive.KnowledgeBase
	tracker *tracker.Tracker
	helper  *normalize.Helper
	// pool is the ground theorem pool seen by strategies and the matcher.
	pool *theorem.Set
}

func (r *run) seed(in Input) {
	for _, t := range in.Trivial {
		r.kb.AddAxiom(t, derive.TrivialTheorem{})
		r.absorb(t)
	}
	for _, t := range in.Smaller {
		r.kb.AddAxiom(t, derive.TrueInSmallerConfiguration{})
		r.absorb(t)
	}
	for _, t := range in.Facts {
		r.absorb(t)
	}
	r.logger.Debug("seeded",
		zap.Int("pool", r.pool.Len()),
		zap.Int("normal", len(r.helper.ProvedTheorems())))
}

// absorb feeds a verified fact to the normalizer and tracker and records
// everything they derive from it. A fact the normalizer rejects goes no
// further.
func (r *run) absorb(t theorem.Theorem) {
	switch t.Type {
	case theorem.EqualObjects:
		res := r.helper.MarkProvedEquality(t)
		if !res.Valid {
			r.logger.Debug("equality rejected", zap.Stringer("theorem", t))
			return
		}
		if len(res.Degenerate) > 0 {
			r.logger.Debug("normal versions kept without rebuild",
				zap.Stringer("equality", t),
				zap.Any("objects", res.Degenerate))
		}
		r.pool.Add(t)
		for _, ref := range res.Reformulated {
			r.recordReformulation(ref.Original, ref.Normalized, ref.Equalities)
		}
		r.markEquality(t)
		for _, cong := range res.Congruences {
			r.kb.AddDerivation(cong, derive.Congruence{}, t)
			r.markEquality(cong)
		}
	default:
		res := r.helper.MarkProvedNonequality(t)
		if !res.Valid {
			r.logger.Debug("theorem rejected", zap.Stringer("theorem", t))
			return
		}
		r.pool.Add(t)
		r.recordReformulation(t, res.Theorem, res.Equalities)
		if t.Type == theorem.Incidence {
			r.trackIncidence(t, res.Theorem)
		}
	}
}

// trackIncidence hands the tracker whichever form of the incidence names
// an explicit line or circle. An incidence with only an implicit line or
// circle stays with the normalizer.
func (r *run) trackIncidence(original, normalized theorem.Theorem) {
	inc := original
	if _, _, ok := inc.IncidencePair(); !ok {
		inc = normalized
		if _, _, ok := inc.IncidencePair(); !ok {
			return
		}
	}
	for _, d := range r.tracker.MarkIncidence(inc) {
		r.recordDerived(d)
	}
}

func (r *run) markEquality(eq theorem.Theorem) {
	r.pool.Add(eq)
	for _, d := range r.tracker.MarkEquality(eq) {
		r.recordDerived(d)
	}
}

func (r *run) recordDerived(d tracker.Derived) {
	var rule derive.Rule = derive.IncidenceSubstitution{}
	if d.Theorem.Type == theorem.EqualObjects {
		rule = derive.EqualityClosure{}
	}
	r.kb.AddDerivation(d.Theorem, rule, d.Premises()...)
	r.pool.Add(d.Theorem)
}

// recordReformulation makes a theorem and its rewritten form derivable
// from each other through the rewrite equalities.
func (r *run) recordReformulation(original, normalized theorem.Theorem, equalities []theorem.Theorem) {
	if original.Key() == normalized.Key() {
		return
	}
	r.kb.AddDerivation(normalized, derive.Reformulation{}, append([]theorem.Theorem{original}, equalities...)...)
	r.kb.AddDerivation(original, derive.Reformulation{}, append([]theorem.Theorem{normalized}, equalities...)...)
	r.pool.Add(normalized)
}

func (r *run) runStrategies() {
	known := r.pool.Items()
	for _, s := range r.cfg.Strategies {
		implications := s.Derive(known)
		rule := derive.Strategy{Name: s.Name()}
		for _, imp := range implications {
			r.kb.AddDerivation(imp.Implied, rule, imp.Premises...)
		}
		r.logger.Debug("strategy run", zap.String("strategy", s.Name()), zap.Int("implications", len(implications)))
	}
}

// matchSubtheorems runs the matcher over every template. Later passes
// retry only templates proving a theorem type with open goals, since
// goals discovered after the first pass can make new matches useful.
func (r *run) matchSubtheorems(targets []theorem.Theorem) {
	if r.cfg.Matcher == nil {
		return
	}
	for pass := 1; pass <= r.cfg.SubtheoremPasses; pass++ {
		open := r.openTypes(targets)
		if pass > 1 && len(open) == 0 {
			return
		}
		examined := theorem.NewSet(r.pool.Items()...)
		for _, w := range r.kb.Wanted() {
			examined.Add(w)
		}
		matches := 0
		for _, tpl := range r.cfg.Templates {
			if pass > 1 && !anyType(tpl.Types(), open) {
				continue
			}
			for _, m := range r.cfg.Matcher.Match(examined.Items(), tpl) {
				rule := derive.Subtheorem{Template: tpl.Name, Theorem: m.Template}
				if r.kb.AddDerivation(m.Examined, rule, m.Needs()...) {
					matches++
				}
			}
		}
		r.logger.Debug("subtheorem pass", zap.Int("pass", pass), zap.Int("matches", matches))
	}
}

// openTypes returns the types of unproven targets and wanted premises.
func (r *run) openTypes(targets []theorem.Theorem) map[theorem.Type]bool {
	open := make(map[theorem.Type]bool)
	for _, t := range targets {
		if !r.kb.IsProven(t) {
			open[t.Type] = true
		}
	}
	for _, w := range r.kb.Wanted() {
		open[w.Type] = true
	}
	return open
}

func anyType(types []theorem.Type, set map[theorem.Type]bool) bool {
	for _, t := range types {
		if set[t] {
			return true
		}
	}
	return false
}

func (r *run) resolve(targets []theorem.Theorem) *Output {
	out := &Output{}
	isTarget := make(map[string]bool, len(targets))
	for _, t := range targets {
		isTarget[t.Key()] = true
		if r.kb.IsProven(t) {
			proof := r.kb.GetProof(t)
			if r.cfg.FlattenTransitivity {
				proof = derive.FlattenTransitivity(proof)
			}
			out.Proven = append(out.Proven, proof)
			continue
		}
		out.Unproven = append(out.Unproven, r.unresolved(t))
	}
	for _, w := range r.kb.Wanted() {
		if !isTarget[w.Key()] {
			out.Discovered = append(out.Discovered, r.unresolved(w))
		}
	}
	return out
}

func (r *run) unresolved(t theorem.Theorem) derive.Unresolved {
	attempts := r.kb.GetDerivationAttempts(t)
	if r.cfg.FlattenTransitivity {
		for i, a := range attempts {
			attempts[i] = derive.FlattenAttempt(a)
		}
	}
	return derive.Unresolved{Theorem: t, Attempts: attempts}
}
