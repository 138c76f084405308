package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConstraint(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"^0.8.20", "0.8.30"},
		{"^0.8.0", "0.8.30"},
		{">=0.8.4 <0.9.0", "0.8.30"},
		{">=0.8.4 <0.8.21", "0.8.20"},
		{"0.8.19", "0.8.19"},
		{"=0.7.6", "0.7.6"},
		{"0.8", "0.8.30"},
		{"0", "0.8.30"},
		{"~0.6.5", "0.6.12"},
		{"~0.6", "0.6.12"},
		{"<0.5.0", "0.4.26"},
		{"<=0.5.16", "0.5.16"},
		{">0.8.29", "0.8.30"},
		{"^0.4.24 || ^0.5.0", "0.5.17"},
		{">=0.4.22 <0.6.0 || ^0.8.9", "0.8.30"},
	}

	for _, tt := range tests {
		got, ok := ResolveConstraint(tt.constraint)
		require.True(t, ok, "constraint %q should resolve", tt.constraint)
		assert.Equal(t, tt.want, got, "constraint %q", tt.constraint)
	}
}

func TestResolveConstraintFailures(t *testing.T) {
	for _, constraint := range []string{
		"",
		"not a version",
		">2.0.0",
		"^1.0.0",
	} {
		_, ok := ResolveConstraint(constraint)
		assert.False(t, ok, "constraint %q should not resolve", constraint)
	}
}

func TestCaretPinsLeftmostNonZero(t *testing.T) {
	// ^0.6.0 must never reach into 0.7.x.
	got, ok := ResolveConstraint("^0.6.0")
	require.True(t, ok)
	assert.Equal(t, "0.6.12", got)
}
