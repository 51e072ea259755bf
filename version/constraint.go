package version

import (
	"fmt"
	"strings"
)

// MalformedConstraint is returned when a constraint string does not match
// the grammar in spec §6, or encodes a rejected operator usage (e.g. a
// single-component `~>` operand).
type MalformedConstraint struct {
	Input  string
	Reason string
}

func (e *MalformedConstraint) Error() string {
	return fmt.Sprintf("malformed constraint %q: %s", e.Input, e.Reason)
}

type op uint8

const (
	opEQ op = iota
	opGT
	opGTE
	opLT
	opLTE
	opPessimistic
)

func (o op) String() string {
	switch o {
	case opEQ:
		return "="
	case opGT:
		return ">"
	case opGTE:
		return ">="
	case opLT:
		return "<"
	case opLTE:
		return "<="
	case opPessimistic:
		return "~>"
	}
	return "?"
}

type atom struct {
	o     op
	v     Version
	ceil  Version // only populated for opPessimistic
}

func (a atom) includes(v Version) bool {
	switch a.o {
	case opEQ:
		return v.Equal(a.v)
	case opGT:
		return a.v.Less(v)
	case opGTE:
		return !v.Less(a.v)
	case opLT:
		return v.Less(a.v)
	case opLTE:
		return !a.v.Less(v)
	case opPessimistic:
		return !v.Less(a.v) && v.Less(a.ceil)
	}
	return false
}

func (a atom) String() string {
	if a.o == opEQ {
		return "=" + a.v.String()
	}
	return a.o.String() + " " + a.v.String()
}

// Constraint is a conjunction of one or more atomic version predicates. The
// zero value is the default (empty) constraint, which accepts any version.
type Constraint struct {
	atoms []atom
}

// operator tokens, longest first so prefix matching picks `>=` before `>`.
var opTokens = []struct {
	sym string
	o   op
}{
	{"==", opEQ},
	{">=", opGTE},
	{"<=", opLTE},
	{"~>", opPessimistic},
	{"=", opEQ},
	{">", opGT},
	{"<", opLT},
}

// ParseConstraint parses a whitespace-separated, conjunctive list of atoms,
// each `OP SP* VERSION` (a bare version with no operator is treated as
// `=`), per spec §6.
func ParseConstraint(body string) (Constraint, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Constraint{}, nil
	}

	fields := strings.Fields(body)
	var atoms []atom

	for i := 0; i < len(fields); i++ {
		tok := fields[i]

		if o, isBareOp := bareOperator(tok); isBareOp {
			if i+1 >= len(fields) {
				return Constraint{}, &MalformedConstraint{Input: body, Reason: fmt.Sprintf("operator %q has no operand", tok)}
			}
			i++
			a, err := mkAtom(o, fields[i], body)
			if err != nil {
				return Constraint{}, err
			}
			atoms = append(atoms, a)
			continue
		}

		if o, rest, ok := splitOperatorPrefix(tok); ok {
			a, err := mkAtom(o, rest, body)
			if err != nil {
				return Constraint{}, err
			}
			atoms = append(atoms, a)
			continue
		}

		a, err := mkAtom(opEQ, tok, body)
		if err != nil {
			return Constraint{}, err
		}
		atoms = append(atoms, a)
	}

	return Constraint{atoms: atoms}, nil
}

// MustParseConstraint is ParseConstraint, but panics on error. For literal
// constraint strings in tests and fixture construction.
func MustParseConstraint(body string) Constraint {
	c, err := ParseConstraint(body)
	if err != nil {
		panic(err)
	}
	return c
}

func bareOperator(tok string) (op, bool) {
	for _, t := range opTokens {
		if tok == t.sym {
			return t.o, true
		}
	}
	return 0, false
}

func splitOperatorPrefix(tok string) (op, string, bool) {
	for _, t := range opTokens {
		if strings.HasPrefix(tok, t.sym) && len(tok) > len(t.sym) {
			return t.o, tok[len(t.sym):], true
		}
	}
	return 0, "", false
}

func mkAtom(o op, verBody, constraintBody string) (atom, error) {
	v, err := Parse(verBody)
	if err != nil {
		return atom{}, &MalformedConstraint{Input: constraintBody, Reason: err.Error()}
	}

	a := atom{o: o, v: v}
	if o == opPessimistic {
		hasPatch := numericComponents(verBody) >= 3
		if numericComponents(verBody) < 2 {
			return atom{}, &MalformedConstraint{Input: constraintBody, Reason: "~> requires at least major.minor"}
		}
		a.ceil = ceiling(v, hasPatch)
	}

	return a, nil
}

// numericComponents counts the dotted numeric components before any
// pre-release/build suffix, e.g. "1.2.3-beta" -> 3, "1.2" -> 2, "1" -> 1.
func numericComponents(verBody string) int {
	core := verBody
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return len(strings.Split(core, "."))
}

// Includes reports whether v satisfies every atom in the constraint. The
// default (zero-value) constraint accepts any version.
func (c Constraint) Includes(v Version) bool {
	for _, a := range c.atoms {
		if !a.includes(v) {
			return false
		}
	}
	return true
}

// IsAny reports whether c is the default (unbounded) constraint.
func (c Constraint) IsAny() bool {
	return len(c.atoms) == 0
}

// Intersect returns the constraint accepting exactly the versions both c
// and other accept: the union of their atoms, since a conjunction of
// conjunctions is itself a conjunction (spec §4.1's
// `constraint.intersect(other)`). The result may be unsatisfiable by any
// version; Intersect does not detect that, it only combines predicates —
// callers that need to know whether the result is empty should check it
// against the candidate versions in play, the same way the builder already
// does for top-level constraints.
func (c Constraint) Intersect(other Constraint) Constraint {
	atoms := make([]atom, 0, len(c.atoms)+len(other.atoms))
	atoms = append(atoms, c.atoms...)
	atoms = append(atoms, other.atoms...)
	return Constraint{atoms: atoms}
}

// SatisfyingVersions returns the subset of versions that c accepts,
// preserving input order.
func (c Constraint) SatisfyingVersions(versions []Version) []Version {
	var out []Version
	for _, v := range versions {
		if c.Includes(v) {
			out = append(out, v)
		}
	}
	return out
}

func (c Constraint) String() string {
	if c.IsAny() {
		return "*"
	}
	parts := make([]string, len(c.atoms))
	for i, a := range c.atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}
