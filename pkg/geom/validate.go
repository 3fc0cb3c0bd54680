package geom

import "fmt"

// ValidationSeverity indicates whether a validation finding makes the
// configuration unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // configuration unusable
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Object   ObjectID           // offending object (zero if configuration-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Object.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] object %s: %s", e.Severity, e.Object, e.Message)
}

// Validate runs the structural checks on a configuration and returns every
// finding. It never mutates the configuration.
func Validate(c *Configuration) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateAcyclic(c)...)
	errs = append(errs, validateReferences(c)...)
	errs = append(errs, validateSignatures(c)...)
	errs = append(errs, validateNames(c)...)
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// validateAcyclic checks that the construction DAG has no cycles using DFS
// with 3-color marking, and that every argument was created before the
// object built from it.
func validateAcyclic(c *Configuration) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[ObjectID]int)
	var errs []ValidationError

	var visit func(id ObjectID) bool
	visit = func(id ObjectID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Object:   id,
				Message:  fmt.Sprintf("cycle detected: %s depends on itself", c.Name(id)),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		o := c.Get(id)
		if o == nil {
			color[id] = black
			return false
		}
		for _, dep := range o.Dependencies() {
			if dep >= id {
				errs = append(errs, ValidationError{
					Object:   id,
					Message:  fmt.Sprintf("argument %s was created after the object", dep),
					Severity: SeverityError,
				})
			}
			if visit(dep) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, o := range c.Objects() {
		if color[o.ID] == white && visit(o.ID) {
			break
		}
	}
	return errs
}

// validateReferences checks that every argument of an original object is
// itself an original object.
func validateReferences(c *Configuration) []ValidationError {
	var errs []ValidationError
	for _, o := range c.Objects() {
		for _, dep := range o.Dependencies() {
			if c.Get(dep) == nil {
				errs = append(errs, ValidationError{
					Object:   o.ID,
					Message:  fmt.Sprintf("argument %s does not exist", dep),
					Severity: SeverityError,
				})
				continue
			}
			if !c.IsOriginal(dep) {
				errs = append(errs, ValidationError{
					Object:   o.ID,
					Message:  fmt.Sprintf("argument %s is not part of the configuration", c.Name(dep)),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateSignatures checks arguments against construction signatures.
func validateSignatures(c *Configuration) []ValidationError {
	var errs []ValidationError
	for _, o := range c.Objects() {
		if o.IsSource() {
			continue
		}
		if err := o.Construction.Check(o.Args, c.arena.typeOf); err != nil {
			errs = append(errs, ValidationError{
				Object:   o.ID,
				Message:  err.Error(),
				Severity: SeverityError,
			})
		}
		if o.Type != o.Construction.Output {
			errs = append(errs, ValidationError{
				Object:   o.ID,
				Message:  fmt.Sprintf("type %s does not match %s output %s", o.Type, o.Construction.Name, o.Construction.Output),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that the name index is injective and warns about
// unnamed free objects, which make reports hard to read.
func validateNames(c *Configuration) []ValidationError {
	var errs []ValidationError
	for name, id := range c.names {
		o := c.Get(id)
		if o == nil || o.Name != name {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references %s", name, id),
				Severity: SeverityError,
			})
		}
	}
	for _, o := range c.Objects() {
		if o.IsSource() && o.Name == "" {
			errs = append(errs, ValidationError{
				Object:   o.ID,
				Message:  "free object has no name",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
