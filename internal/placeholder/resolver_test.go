package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wincross-dev/wincross/internal/model"
)

// TestResolve_Simple verifies single-token substitution against a seed
// mapping of well-known directories.
func TestResolve_Simple(t *testing.T) {
	vars := map[string]string{"state_dir": "/work/.wincross"}

	got, err := Resolve("{state_dir}/build", vars)
	require.NoError(t, err)
	assert.Equal(t, "/work/.wincross/build", got)
}

// TestResolve_Transitive verifies that a placeholder value may itself
// contain another placeholder, resolved through multiple passes.
func TestResolve_Transitive(t *testing.T) {
	vars := map[string]string{
		"build_dir": "{state_dir}/build-windows",
		"state_dir": "{project_root}/.wincross",
		"project_root": "/work/project",
	}

	got, err := Resolve("{build_dir}/bin", vars)
	require.NoError(t, err)
	assert.Equal(t, "/work/project/.wincross/build-windows/bin", got)
}

// TestResolve_Idempotent verifies that resolving an already-resolved string
// is a no-op: a fully substituted string contains no tokens, so a second
// resolution returns it unchanged.
func TestResolve_Idempotent(t *testing.T) {
	vars := map[string]string{"state_dir": "/work/.wincross"}

	once, err := Resolve("{state_dir}/build", vars)
	require.NoError(t, err)
	twice, err := Resolve(once, vars)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

// TestResolve_UnknownLeftAsIs verifies that unknown tokens survive a
// non-strict resolution pass untouched.
func TestResolve_UnknownLeftAsIs(t *testing.T) {
	got, err := Resolve("{mystery}/x", map[string]string{"state_dir": "/s"})
	require.NoError(t, err)
	assert.Equal(t, "{mystery}/x", got)
}

// TestResolve_Cycle verifies that mutually referential placeholder values
// fail with ErrPlaceholderCycle instead of looping indefinitely.
func TestResolve_Cycle(t *testing.T) {
	vars := map[string]string{
		"a": "{b}",
		"b": "{a}",
	}

	_, err := Resolve("{a}", vars)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPlaceholderCycle)
}

// TestResolve_SelfCycle verifies that a value referencing its own name is
// detected as a cycle even though each pass makes progress (the string
// keeps growing).
func TestResolve_SelfCycle(t *testing.T) {
	_, err := Resolve("{a}", map[string]string{"a": "x{a}"})
	assert.ErrorIs(t, err, model.ErrPlaceholderCycle)
}

// TestResolveStrict_Unknown verifies that a token with no mapping is fatal
// under strict resolution, naming the offending token.
func TestResolveStrict_Unknown(t *testing.T) {
	_, err := ResolveStrict("{nope}", map[string]string{"state_dir": "/s"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnresolvedPlaceholder)
	assert.Contains(t, err.Error(), "nope")
}

// TestResolveStrict_Converges verifies the testable property that for
// cycle-free mappings the result contains zero remaining {...} tokens.
func TestResolveStrict_Converges(t *testing.T) {
	vars := map[string]string{
		"config_dir": "/work/project",
		"state_dir":  "{config_dir}/.wincross",
		"build_dir":  "{state_dir}/build",
	}

	got, err := ResolveStrict("{build_dir}:{config_dir}", vars)
	require.NoError(t, err)
	assert.Empty(t, Tokens(got))
	assert.Equal(t, "/work/project/.wincross/build:/work/project", got)
}

// TestResolve_LiteralBraces verifies that brace constructs that are not
// identifier tokens (CMake generator expressions, shell parameter
// expansion) pass through unmodified.
func TestResolve_LiteralBraces(t *testing.T) {
	s := "$<$<CONFIG:Debug>:/Od> ${HOME} {1bad}"
	got, err := Resolve(s, map[string]string{"state_dir": "/s"})
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

// TestResolveSlice verifies element-wise strict resolution.
func TestResolveSlice(t *testing.T) {
	vars := map[string]string{"build_dir": "/b"}

	got, err := ResolveSlice([]string{"-B", "{build_dir}"}, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"-B", "/b"}, got)

	_, err = ResolveSlice([]string{"{missing}"}, vars)
	assert.ErrorIs(t, err, model.ErrUnresolvedPlaceholder)
}

// TestResolveMap verifies value-wise strict resolution; the error message
// names the offending key.
func TestResolveMap(t *testing.T) {
	vars := map[string]string{"state_dir": "/s"}

	got, err := ResolveMap(map[string]string{"SCCACHE_DIR": "{state_dir}/sccache"}, vars)
	require.NoError(t, err)
	assert.Equal(t, "/s/sccache", got["SCCACHE_DIR"])

	_, err = ResolveMap(map[string]string{"X": "{missing}"}, vars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"X"`)
}

// TestTokens verifies ordered, deduplicated token extraction.
func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Tokens("{a}/{b}/{a}"))
	assert.Empty(t, Tokens("no tokens here"))
}
