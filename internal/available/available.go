// Package available implements the check command functionality
package available

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/uberswe/domaingen/internal/app"
	"github.com/uberswe/domaingen/internal/check"
	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/store"
	"github.com/uberswe/domaingen/pkg/util"
)

// progressEvery is how many checks pass between progress log lines
const progressEvery = 25

// Run checks candidates against suffixes, persists the outcome and prints
// the top available names. A cancelled ctx keeps the finished batches.
func Run(ctx context.Context, a *app.App, candidates, suffixes []string, top int, out io.Writer) (check.Report, error) {
	log.Info().
		Int("candidates", len(candidates)).
		Strs("suffixes", suffixes).
		Msg("Running check command to find available domains")

	obs := check.Observer{
		OnProgress: func(p domain.CheckProgress) {
			if p.Checked%progressEvery == 0 || p.Checked == p.Total {
				log.Info().
					Int("checked", p.Checked).
					Int("total", p.Total).
					Str("current", p.Current).
					Msg("Check progress")
			}
		},
		OnError: func(err error, candidate string) {
			log.Debug().Err(err).Str("candidate", candidate).Msg("Check failed")
		},
	}

	report, runErr := a.Scheduler.CheckAll(ctx, candidates, suffixes, a.CheckOptions(), obs)

	persistCtx := context.WithoutCancel(ctx)
	if err := store.RecordResults(persistCtx, a.Store, candidates, a.Scheduler.Status().Snapshot()); err != nil {
		log.Error().Err(err).Msg("Failed to persist check results")
	}

	DisplayTopDomains(out, util.RankAvailable(a.Scheduler.Status().Available()), top)
	return report, runErr
}

// ReadCandidates reads one candidate per line. Blank lines and lines starting
// with # are skipped, as is anything after the first dot.
func ReadCandidates(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate list: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "."); idx != -1 {
			line = line[:idx]
		}
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate list: %w", err)
	}
	return out, nil
}

// DisplayTopDomains prints up to top ranked domains
func DisplayTopDomains(out io.Writer, domains []domain.DomainInfo, top int) {
	if top <= 0 || top > len(domains) {
		top = len(domains)
	}

	fmt.Fprintf(out, "\nTop available domains (%d found):\n", len(domains))
	fmt.Fprintln(out, "======================================")
	fmt.Fprintf(out, "%-4s %-24s %-7s %-7s %-7s %-7s %-7s %-7s %s\n",
		"Rank", "Domain", "Score", "Length", "TLD", "Brand", "Keyword", "Dash", "Type")
	fmt.Fprintln(out, strings.Repeat("-", 84))

	for i, d := range domains[:top] {
		dashPenalty := "-"
		if d.HasDash {
			dashPenalty = fmt.Sprintf("%.2f", d.DashPenalty)
		}
		keywordScore := "-"
		if d.KeywordScore > 0 {
			keywordScore = fmt.Sprintf("%.2f", d.KeywordScore)
		}
		fmt.Fprintf(out, "%-4d %-24s %-7.2f %-7.2f %-7.2f %-7.2f %-7s %-7s %s\n",
			i+1, d.Name, d.Score, d.LengthScore, d.TLDScore, d.BrandabilityScore,
			keywordScore, dashPenalty, domainType(d))
	}
}

func domainType(d domain.DomainInfo) string {
	switch {
	case d.IsLetterOnly && d.Length <= 3:
		return "Premium (Letter-only)"
	case d.IsLetterNumber && d.Length == 2:
		return "Premium (Letter+Number)"
	case d.Length <= 3:
		return "Premium (Ultra-short)"
	case d.Length <= 5:
		return "Premium (Short)"
	case d.HasDash:
		return "Standard (Has Dash)"
	default:
		return "Standard"
	}
}
