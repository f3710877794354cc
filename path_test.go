package far

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "foo.txt", "foo.txt"},
		{"backslash separators", `Music\Modes\mode1.xa`, "Music/Modes/mode1.xa"},
		{"slash separators", "sounds/effects/click.wav", "sounds/effects/click.wav"},
		{"mixed separators", `sounds\effects/click.wav`, "sounds/effects/click.wav"},
		{"leading backslash", `\foo\bar`, "foo/bar"},
		{"leading slash", "/etc/thing", "etc/thing"},
		{"trailing slash", "foo/bar/", "foo/bar"},
		{"doubled separators", `foo\\bar`, "foo/bar"},
		{"empty string", "", "."},
		{"only separators", `\\`, "."},
		// Traversal elements survive normalization; fs.ValidPath rejects
		// them at the lookup and extraction boundaries.
		{"dotdot preserved", `..\evil.txt`, "../evil.txt"},
		{"dotdot in middle", `a\..\b`, "a/../b"},
		{"dot preserved", `a\.\b`, "a/./b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}
