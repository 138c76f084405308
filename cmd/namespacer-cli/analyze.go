package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"namespacer/internal/analysis"
	"namespacer/internal/settings"
	"namespacer/internal/version"

	solparser "namespacer/internal/parser"
)

// fileReport is one analyzed file, ready for rendering or fixing.
type fileReport struct {
	path        string
	content     string
	prefix      string
	diagnostics []analysis.Diagnostic
}

func analyzeFile(ctx context.Context, store *settings.Store, resolver *version.Resolver, path string, prefixOverride string) (*fileReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content := string(data)

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	root := filepath.Dir(abs)

	cfg := store.For(ctx, root)
	prefix := cfg.Prefix
	if prefixOverride != "" {
		prefix = prefixOverride
	}

	tree := solparser.Parse(version.Latest(), content)
	resolved := resolver.Infer(ctx, abs, nil, cfg.SolidityVersion, version.Pragma(tree))
	if resolved != version.Latest() {
		tree = solparser.Parse(resolved, content)
	}

	return &fileReport{
		path:        path,
		content:     content,
		prefix:      prefix,
		diagnostics: analysis.Analyze(tree, prefix),
	}, nil
}

// render formats every diagnostic of a report with its source line and a
// caret underline.
func (r *fileReport) render() string {
	var b strings.Builder
	for _, d := range r.diagnostics {
		b.WriteString(formatDiagnostic(r.path, r.content, d))
	}
	return b.String()
}

func (r *fileReport) problems() int {
	count := 0
	for _, d := range r.diagnostics {
		if d.Severity <= analysis.SeverityWarning {
			count++
		}
	}
	return count
}

func formatDiagnostic(path, source string, d analysis.Diagnostic) string {
	line, column := positionAt(source, d.Span.Start)
	lines := strings.Split(source, "\n")

	var lineContent string
	if line-1 < len(lines) && line-1 >= 0 {
		lineContent = lines[line-1]
	}

	length := d.Span.Len()
	if end := len(lineContent) - (column - 1); length > end {
		length = end
	}

	marker := strings.Repeat(" ", max(0, column-1)) +
		strings.Repeat("^", max(1, length))

	label, labelColor := severityLabel(d.Severity)
	bold := color.New(color.Bold).SprintFunc()

	lineNumberWidth := len(fmt.Sprintf("%d", line))
	if lineNumberWidth < 3 {
		lineNumberWidth = 3 // minimum width for visual alignment
	}
	indent := strings.Repeat(" ", lineNumberWidth)

	message := d.Message
	if d.Detail != "" {
		message += ": " + d.Detail
	}

	return fmt.Sprintf(
		"%s[%s]: %s\n%s┌─ %s:%d:%d\n%s│\n%3d│%s\n%s│%s\n\n",
		labelColor(label),
		d.Code,
		message,
		indent,
		path, line, column,
		indent,
		line, lineContent,
		indent,
		bold(marker),
	)
}

func severityLabel(s analysis.Severity) (string, func(a ...interface{}) string) {
	switch s {
	case analysis.SeverityError:
		return "error", color.New(color.FgRed).SprintFunc()
	case analysis.SeverityWarning:
		return "warning", color.New(color.FgYellow).SprintFunc()
	default:
		return "info", color.New(color.FgCyan).SprintFunc()
	}
}

// positionAt converts a byte offset to 1-based line and column.
func positionAt(source string, offset int) (int, int) {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}
