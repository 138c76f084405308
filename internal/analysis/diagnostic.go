// Package analysis classifies contracts as upgrade-sensitive and runs
// the namespaced-storage diagnostic rules over a parsed tree. Analysis
// is pure: same tree and prefix, same diagnostics.
package analysis

import (
	"namespacer/internal/syntax"
)

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Code is a stable rule identifier. The codes are the wire contract
// between analysis and fix generation: a fix request may arrive carrying
// nothing but a diagnostic with one of these strings on it.
type Code string

const (
	CodeNamespaceIdMismatch             Code = "NamespaceIdMismatch"
	CodeNamespaceIdMismatchHashComment  Code = "NamespaceIdMismatchHashComment"
	CodeNamespaceHashMismatch           Code = "NamespaceHashMismatch"
	CodeNamespaceStandaloneHashMismatch Code = "NamespaceStandaloneHashMismatch"
	CodeVariableCanBeNamespaced         Code = "VariableCanBeNamespaced"
	CodeContractCanBeNamespaced         Code = "ContractCanBeNamespaced"
)

// Diagnostic is one finding with enough attached repair data for the
// refactor layer to act on later without re-running any rule.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Detail   string
	Span     syntax.Span
	Repair   Repair
}

// Repair is the tagged union of rule-specific repair payloads.
type Repair interface {
	repair()
}

// Replacement repairs a diagnostic by substituting its span with Text.
type Replacement struct {
	Text string
}

func (Replacement) repair() {}

// Migration carries the full move-all-variables payload for
// ContractCanBeNamespaced.
type Migration struct {
	Contract NamespaceableContract
}

func (Migration) repair() {}

// Variable is a state variable eligible for namespacing: its name, the
// normalized declaration text (attributes stripped, type and name only),
// and its trivia-trimmed source span.
type Variable struct {
	Name        string
	Declaration string
	Span        syntax.Span
}

// NamespaceableContract is built once per contract per analysis pass and
// consumed by the bulk quick fix.
type NamespaceableContract struct {
	Name      string
	Prefix    string
	Variables []Variable
}
