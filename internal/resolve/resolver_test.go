package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bdintel-engine/internal/config"
	"bdintel-engine/internal/domain"
)

func testResolver() Resolver {
	return Resolver{Cfg: config.Default()}
}

func mk(code string, conf float64, kws ...string) domain.ProgramMatch {
	return domain.ProgramMatch{
		JobID:           "j1",
		ProgramCode:     code,
		Confidence:      conf,
		MatchedKeywords: kws,
	}
}

func TestResolveEmptyIsUnmatched(t *testing.T) {
	got := testResolver().Resolve("j1", nil)
	assert.Equal(t, domain.StatusUnmatched, got.Status)
	assert.Equal(t, "j1", got.JobID)
	assert.Empty(t, got.Accepted)
}

func TestResolveSingleMatch(t *testing.T) {
	got := testResolver().Resolve("j1", []domain.ProgramMatch{mk("GBSD", 0.55, "GBSD")})
	require.Equal(t, domain.StatusMapped, got.Status)
	require.Len(t, got.Accepted, 1)
	assert.Equal(t, "GBSD", got.Accepted[0].ProgramCode)
	assert.Equal(t, 0.55, got.Accepted[0].Confidence)
}

func TestResolveCoMappingWithinOverlapBand(t *testing.T) {
	// shared keyword, scores 0.05 apart: a real dual-program posting
	got := testResolver().Resolve("j1", []domain.ProgramMatch{
		mk("GBSD", 0.75, "guidance subsystem", "GBSD"),
		mk("B-21", 0.80, "guidance subsystem", "B-21"),
	})
	require.Equal(t, domain.StatusMapped, got.Status)
	assert.Equal(t, []string{"B-21", "GBSD"}, got.ProgramCodes())
}

func TestResolveOverlapBandCutsDistantMatches(t *testing.T) {
	got := testResolver().Resolve("j1", []domain.ProgramMatch{
		mk("GBSD", 0.85, "GBSD"),
		mk("B-21", 0.60, "B-21"),
	})
	require.Equal(t, domain.StatusMapped, got.Status)
	assert.Equal(t, []string{"GBSD"}, got.ProgramCodes())
}

func TestResolveDisjointNearTieIsUnresolved(t *testing.T) {
	got := testResolver().Resolve("j1", []domain.ProgramMatch{
		mk("GBSD", 0.50, "GBSD"),
		mk("B-21", 0.49, "Raider"),
	})
	assert.Equal(t, domain.StatusUnresolved, got.Status)
	assert.Empty(t, got.Accepted)
}

func TestResolveSharedNearTieCoMaps(t *testing.T) {
	// same gap as above, but shared evidence: keep both
	got := testResolver().Resolve("j1", []domain.ProgramMatch{
		mk("GBSD", 0.50, "nuclear surety"),
		mk("B-21", 0.49, "nuclear surety"),
	})
	require.Equal(t, domain.StatusMapped, got.Status)
	assert.Equal(t, []string{"GBSD", "B-21"}, got.ProgramCodes())
}

func TestResolveKeywordComparisonIsCaseInsensitive(t *testing.T) {
	got := testResolver().Resolve("j1", []domain.ProgramMatch{
		mk("GBSD", 0.50, "ICBM"),
		mk("B-21", 0.49, "icbm"),
	})
	assert.Equal(t, domain.StatusMapped, got.Status)
}

func TestResolveExactTieOrderedByCode(t *testing.T) {
	got := testResolver().Resolve("j1", []domain.ProgramMatch{
		mk("ZULU", 0.50, "shared"),
		mk("ALFA", 0.50, "shared"),
	})
	require.Equal(t, domain.StatusMapped, got.Status)
	assert.Equal(t, []string{"ALFA", "ZULU"}, got.ProgramCodes())
}
