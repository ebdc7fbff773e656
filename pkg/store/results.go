package store

import (
	"context"

	"github.com/uberswe/domaingen/pkg/domain"
)

// RecordResults saves candidates in order and sets the state of every
// candidate that has results. It stops at the first error.
func RecordResults(ctx context.Context, s Store, candidates []string, results map[string]map[string]domain.CheckResult) error {
	if _, err := s.SaveCandidates(ctx, candidates); err != nil {
		return err
	}
	for _, c := range candidates {
		r, ok := results[c]
		if !ok {
			continue
		}
		status, available := domain.RecordStatus(r)
		if err := s.UpdateStatus(ctx, c, status, available); err != nil {
			return err
		}
	}
	return nil
}
