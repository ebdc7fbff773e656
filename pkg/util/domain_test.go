package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateDomain_Ordering(t *testing.T) {
	dv := EvaluateDomain("dv.se")
	d7 := EvaluateDomain("d7.se")
	dtv := EvaluateDomain("dtv.se")

	assert.Greater(t, dv.Score, d7.Score)
	assert.Greater(t, d7.Score, dtv.Score)

	assert.True(t, dv.IsLetterOnly)
	assert.True(t, d7.IsLetterNumber)
	assert.Equal(t, "se", dv.TLD)
	assert.Equal(t, 2, dv.Length)
}

func TestEvaluateDomain_Penalties(t *testing.T) {
	plain := EvaluateDomain("ab.com")
	dashed := EvaluateDomain("a-b.com")
	assert.True(t, dashed.HasDash)
	assert.Greater(t, plain.Score, dashed.Score)

	com := EvaluateDomain("xyz.com")
	other := EvaluateDomain("xyz.xyz")
	assert.Greater(t, com.Score, other.Score)

	for _, n := range []string{"a.com", "averyveryverylongdomainname-with-dashes.example", "q"} {
		info := EvaluateDomain(n)
		assert.GreaterOrEqual(t, info.Score, 0.0, n)
		assert.LessOrEqual(t, info.Score, 1.0, n)
	}
}

func TestEvaluateDomain_MultiLabelSuffix(t *testing.T) {
	info := EvaluateDomain("ab.co.uk")
	assert.Equal(t, "co.uk", info.TLD)
	assert.Equal(t, 2, info.Length)
	assert.Equal(t, 0.5, info.TLDScore)
}

func TestRankAvailable(t *testing.T) {
	ranked := RankAvailable([]string{"dtv.se", "dv.se", "d7.se"})
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"dv.se", "d7.se", "dtv.se"}, names)

	tied := RankAvailable([]string{"bb.com", "aa.com"})
	assert.Equal(t, "aa.com", tied[0].Name)
}

func TestPatterns(t *testing.T) {
	assert.True(t, IsLetterNumberPattern("a123"))
	assert.False(t, IsLetterNumberPattern("a1b"))
	assert.False(t, IsLetterNumberPattern("1a"))
	assert.True(t, IsLetterOnly("abc"))
	assert.False(t, IsLetterOnly("ab1"))
	assert.False(t, IsLetterOnly(""))
}

func TestCalculateKeywordScore(t *testing.T) {
	assert.Equal(t, 0.9, CalculateKeywordScore("webx"))
	assert.Equal(t, 0.7, CalculateKeywordScore("mywebsite"))
	assert.Equal(t, 0.0, CalculateKeywordScore("zzz"))
}
