package dictionary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bdintel-engine/internal/domain"
)

func testDict(t *testing.T) *Dictionary {
	t.Helper()
	d, err := FromPrograms([]domain.ProgramDefinition{
		{
			ProgramCode: "GBSD",
			FullName:    "Ground Based Strategic Deterrent",
			Aliases:     []string{"GBSD"},
			CodeNames:   []string{"Sentinel"},
			Locations:   []string{"Roy, UT"},
			KeySkills:   []string{"ICBM"},
		},
		{
			ProgramCode: "F-35",
			FullName:    "F-35 Lightning II",
			Aliases:     []string{"JSF"},
		},
	})
	require.NoError(t, err)
	return d
}

func TestLookupCandidatesWordBoundary(t *testing.T) {
	d := testDict(t)

	// "GBSDX" must not hit; "gbsd" must, case-insensitively
	cands := d.LookupCandidates("working on GBSDX systems")
	assert.Empty(t, cands)

	cands = d.LookupCandidates("the gbsd program office")
	require.Len(t, cands, 1)
	assert.Equal(t, "GBSD", cands[0].ProgramCode)
	assert.Equal(t, []string{"GBSD"}, cands[0].MatchedKeywords)
}

func TestLookupCandidatesPhrases(t *testing.T) {
	d := testDict(t)

	cands := d.LookupCandidates("Ground Based Strategic Deterrent sustainment plus F-35 Lightning II mods")
	require.Len(t, cands, 2)
	assert.Equal(t, "GBSD", cands[0].ProgramCode)
	assert.Equal(t, "F-35", cands[1].ProgramCode)
	assert.Equal(t, []string{"Ground Based Strategic Deterrent"}, cands[0].MatchedKeywords)
	// the full name and the implicit program-code term both start here
	assert.Equal(t, []string{"F-35 Lightning II", "F-35"}, cands[1].MatchedKeywords)
}

func TestLookupCandidatesProgramCodeIsImplicitTerm(t *testing.T) {
	// the bare code matches even when the acronym list omits it
	d, err := FromPrograms([]domain.ProgramDefinition{
		{ProgramCode: "F-35", FullName: "Joint Strike Fighter", Aliases: []string{"JSF"}},
	})
	require.NoError(t, err)

	cands := d.LookupCandidates("F-35 avionics sustainment")
	require.Len(t, cands, 1)
	assert.Equal(t, "F-35", cands[0].ProgramCode)
	assert.Equal(t, []string{"F-35"}, cands[0].MatchedKeywords)
}

func TestLookupCandidatesDeterministicOrder(t *testing.T) {
	d := testDict(t)
	text := "Sentinel and JSF and GBSD"
	first := d.LookupCandidates(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.LookupCandidates(text))
	}
}

func TestParseAliasCollision(t *testing.T) {
	_, err := Parse(strings.NewReader(`{
		"ONE": {"full_name": "Program One", "acronyms": ["ABC"]},
		"TWO": {"full_name": "Program Two", "acronyms": ["ABC"]}
	}`))
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "ABC")
}

func TestParseDuplicateProgramCode(t *testing.T) {
	_, err := Parse(strings.NewReader(`{
		"ONE": {"full_name": "Program One"},
		"ONE": {"full_name": "Program One Again"}
	}`))
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
	assert.Contains(t, err.Error(), "duplicate program code")
}

func TestParseMissingFullName(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"ONE": {"acronyms": ["X"]}}`))
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestTermCount(t *testing.T) {
	d := testDict(t)
	// full name + code name + alias, with the alias "GBSD" folding into the
	// implicit program-code term
	assert.Equal(t, 3, d.TermCount("GBSD"))
	// full name + implicit code + alias
	assert.Equal(t, 3, d.TermCount("F-35"))
}

func TestSameTermSharedWithinProgram(t *testing.T) {
	// duplicate term inside one program is fine, across programs it is not
	d, err := FromPrograms([]domain.ProgramDefinition{
		{ProgramCode: "ALPHA", FullName: "Alpha", Aliases: []string{"alpha", "ALPHA"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.TermCount("ALPHA"))
}
