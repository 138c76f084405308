package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"namespacer/internal/analysis"
)

const diagnosticSource = "namespacer"

// ConvertDiagnostics transforms analysis diagnostics into LSP
// diagnostics for IDE display. The rule code travels as the LSP code so
// a later code-action request can be matched back to its rule.
func ConvertDiagnostics(mapper *Mapper, diags []analysis.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		message := d.Message
		if d.Detail != "" {
			message += ": " + d.Detail
		}
		out = append(out, protocol.Diagnostic{
			Range:    mapper.RangeFor(d.Span),
			Severity: ptrSeverity(convertSeverity(d.Severity)),
			Code:     &protocol.IntegerOrString{Value: string(d.Code)},
			Source:   ptrString(diagnosticSource),
			Message:  message,
		})
	}
	return out
}

func convertSeverity(s analysis.Severity) protocol.DiagnosticSeverity {
	switch s {
	case analysis.SeverityError:
		return protocol.DiagnosticSeverityError
	case analysis.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case analysis.SeverityInformation:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
