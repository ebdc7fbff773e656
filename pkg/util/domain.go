// Package util ranks available domain names
package util

import (
	"slices"
	"strings"

	"github.com/uberswe/domaingen/pkg/domain"
)

// Score weights
const (
	lengthWeight       = 0.35
	brandabilityWeight = 0.25
	dashPenaltyWeight  = 0.15
	tldWeight          = 0.15
	keywordWeight      = 0.10
)

var keywords = []string{
	"web", "app", "tech", "code", "dev", "cloud", "data", "shop", "store", "buy",
	"sell", "market", "online", "digital", "smart", "eco", "green", "health",
	"care", "med", "edu", "learn", "travel", "food", "ai", "crypt", "coin",
}

// EvaluateDomain scores a fully-qualified name between 0 and 1.
//
// Shorter names score higher, letter-only beats a letter followed by digits,
// which beats longer names (dv.se > d7.se > dtv.se). Dashes are penalized,
// popular suffixes and keywords add a bonus and pronounceable names are
// considered more brandable.
func EvaluateDomain(fqdn string) domain.DomainInfo {
	name, tld := fqdn, ""
	if idx := strings.Index(fqdn, "."); idx != -1 {
		name, tld = fqdn[:idx], fqdn[idx+1:]
	}

	info := domain.DomainInfo{
		Name:           fqdn,
		Length:         len(name),
		TLD:            tld,
		HasDash:        strings.ContainsRune(name, domain.Separator),
		IsLetterOnly:   IsLetterOnly(name),
		IsLetterNumber: IsLetterNumberPattern(name),
	}

	info.LengthScore = lengthScore(info.Length)
	info.Pronounceable = CalculatePronounceability(name)
	info.BrandabilityScore = CalculateBrandabilityScore(info)

	// fixed pattern scores keep the short-name ordering stable
	switch {
	case info.IsLetterOnly && info.Length <= 2:
		info.LengthScore, info.BrandabilityScore = 1.0, 0.7
	case info.IsLetterOnly && info.Length == 3:
		info.LengthScore, info.BrandabilityScore = 0.95, 0.6
	case info.IsLetterOnly:
		info.LengthScore = max(0.7, 0.90-float64(info.Length-3)*0.05)
		info.BrandabilityScore = 0.4
	case info.IsLetterNumber && info.Length == 2:
		info.LengthScore, info.BrandabilityScore = 0.98, 0.65
	case info.IsLetterNumber:
		info.LengthScore = max(0.7, 0.90-float64(info.Length-2)*0.05)
		info.BrandabilityScore = 0.45
	}

	if info.HasDash {
		info.DashPenalty = 0.3
	}
	info.TLDScore = CalculateTLDScore(tld)
	info.KeywordScore = CalculateKeywordScore(name)

	info.Score = clamp(info.LengthScore*lengthWeight +
		info.BrandabilityScore*brandabilityWeight -
		info.DashPenalty*dashPenaltyWeight +
		info.TLDScore*tldWeight +
		info.KeywordScore*keywordWeight)

	return info
}

// RankAvailable evaluates names and sorts them best first. Equal scores sort by name.
func RankAvailable(names []string) []domain.DomainInfo {
	out := make([]domain.DomainInfo, 0, len(names))
	for _, n := range names {
		out = append(out, EvaluateDomain(n))
	}
	slices.SortStableFunc(out, func(a, b domain.DomainInfo) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func lengthScore(n int) float64 {
	switch {
	case n <= 2:
		return 1.0
	case n == 3:
		return 0.95
	case n == 4:
		return 0.9
	case n <= 6:
		return 0.85
	case n <= 10:
		return 0.8
	default:
		return max(0, 0.8-float64(n-10)/20.0)
	}
}

// IsLetterNumberPattern reports a letter followed only by digits, like d7 or a123
func IsLetterNumberPattern(name string) bool {
	if len(name) < 2 || !isLetter(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isDigit(name[i]) {
			return false
		}
	}
	return true
}

// IsLetterOnly checks if a name contains only letters
func IsLetterOnly(name string) bool {
	for i := 0; i < len(name); i++ {
		if !isLetter(name[i]) {
			return false
		}
	}
	return name != ""
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// CalculateTLDScore returns a score between 0 and 1 based on suffix preference.
// Multi-label suffixes like co.uk are scored by their last label.
func CalculateTLDScore(tld string) float64 {
	if idx := strings.LastIndex(tld, "."); idx != -1 {
		tld = tld[idx+1:]
	}
	switch strings.ToLower(tld) {
	case "com":
		return 1.0
	case "net", "org":
		return 0.9
	case "io", "co", "app", "dev":
		return 0.85
	case "se", "nu":
		return 0.8
	default:
		return 0.5
	}
}

// CalculateKeywordScore returns a score between 0 and 1 for names containing a keyword
func CalculateKeywordScore(name string) float64 {
	name = strings.ToLower(name)
	for _, kw := range keywords {
		if !strings.Contains(name, kw) {
			continue
		}
		switch extra := len(name) - len(kw); {
		case extra <= 3:
			return 0.9
		case extra <= 6:
			return 0.7
		default:
			return 0.5
		}
	}
	return 0
}

// CalculateBrandabilityScore combines pronounceability, shortness and the absence of dashes
func CalculateBrandabilityScore(info domain.DomainInfo) float64 {
	score := info.Pronounceable
	switch {
	case info.Length <= 4:
		score += 0.3
	case info.Length <= 6:
		score += 0.2
	case info.Length <= 8:
		score += 0.1
	}
	if info.HasDash {
		score -= 0.3
	}
	if info.IsLetterOnly {
		score += 0.2
	}
	return clamp(score)
}

// CalculatePronounceability rewards vowels and penalizes runs of more than two consonants
func CalculatePronounceability(name string) float64 {
	if name == "" {
		return 0
	}
	name = strings.ToLower(name)
	score := 0.0
	run := 0
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case strings.IndexByte("aeiouy", c) != -1:
			score += 0.1
			run = 0
		case isLetter(c):
			run++
			if run > 2 {
				score -= 0.1
			}
		}
	}
	return clamp(score / float64(len(name)))
}

func clamp(v float64) float64 {
	return min(1, max(0, v))
}
