package derive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// provabilityProgram computes the least fixpoint of the records. Each
// record R with premises T1..Tn is binarized into the chain
// step(R,0), step(R,1), ..., step(R,n), where step(R,i) needs step(R,i-1)
// and proven(Ti). Only the input predicates are declared.
const provabilityProgram = `
Decl record(R) bound[/number].
Decl link(R, From, To, T) bound[/number, /number, /number, /number].
Decl arity(R, N) bound[/number, /number].
Decl concludes(R, T) bound[/number, /number].

step(R, 0) :- record(R).
step(R, J) :- step(R, I), link(R, I, J, T), proven(T).
complete(R) :- arity(R, N), step(R, N).
proven(T) :- complete(R), concludes(R, T).
`

// ErrAuditMismatch is returned when the Datalog evaluation and the
// incremental resolution disagree.
var ErrAuditMismatch = errors.New("derive: provability audit mismatch")

// DatalogProven evaluates the records with a Datalog engine and returns
// the keys of the provable theorems.
func DatalogProven(kb *KnowledgeBase) (map[string]bool, error) {
	unit, err := parse.Unit(strings.NewReader(provabilityProgram))
	if err != nil {
		return nil, fmt.Errorf("parse provability program: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze provability program: %w", err)
	}

	ids := make(map[string]int64, len(kb.order))
	for i, k := range kb.order {
		ids[k] = int64(i)
	}
	store := factstore.NewSimpleInMemoryStore()
	for _, r := range kb.records {
		rid := ast.Number(int64(r.index))
		store.Add(ast.NewAtom("record", rid))
		store.Add(ast.NewAtom("arity", rid, ast.Number(int64(len(r.Premises)))))
		store.Add(ast.NewAtom("concludes", rid, ast.Number(ids[r.key])))
		for i, p := range r.Premises {
			store.Add(ast.NewAtom("link", rid,
				ast.Number(int64(i)), ast.Number(int64(i+1)), ast.Number(ids[p.Key()])))
		}
	}
	if _, err := engine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("evaluate provability program: %w", err)
	}

	proven := make(map[string]bool)
	query := ast.NewQuery(ast.PredicateSym{Symbol: "proven", Arity: 1})
	err = store.GetFacts(query, func(atom ast.Atom) error {
		c, ok := atom.Args[0].(ast.Constant)
		if !ok || c.Type != ast.NumberType {
			return fmt.Errorf("unexpected proven/1 argument %v", atom.Args[0])
		}
		if c.NumValue < 0 || int(c.NumValue) >= len(kb.order) {
			return fmt.Errorf("proven/1 argument %d out of range", c.NumValue)
		}
		proven[kb.order[c.NumValue]] = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proven, nil
}

// Audit checks the incremental resolution against DatalogProven.
func Audit(kb *KnowledgeBase) error {
	proven, err := DatalogProven(kb)
	if err != nil {
		return err
	}
	for _, k := range kb.order {
		if incremental := kb.proof[k] != nil; incremental != proven[k] {
			return fmt.Errorf("%w: %s proven=%t, datalog=%t", ErrAuditMismatch, kb.theorems[k], incremental, proven[k])
		}
	}
	return nil
}
