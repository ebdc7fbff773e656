package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uberswe/domaingen/pkg/api"
	"github.com/uberswe/domaingen/pkg/domain"
)

// loopiaAPI is the part of api.Client the lookup needs
type loopiaAPI interface {
	DomainIsFree(ctx context.Context, domain string) (string, error)
}

// Loopia checks availability with Loopia's domainIsFree call
type Loopia struct {
	client loopiaAPI
}

// NewLoopia wraps a Loopia API client
func NewLoopia(client loopiaAPI) *Loopia {
	return &Loopia{client: client}
}

func (l *Loopia) Lookup(ctx context.Context, fqdn string) (domain.Verdict, error) {
	status, err := l.client.DomainIsFree(ctx, fqdn)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, err)
		case strings.Contains(err.Error(), "429"), strings.Contains(err.Error(), "Too Many Requests"):
			return domain.Verdict{}, domain.NewLookupError(domain.KindRateLimited, fqdn, err)
		default:
			return domain.Verdict{}, domain.NewLookupError(domain.KindNetwork, fqdn, err)
		}
	}

	switch status {
	case api.StatusFree:
		return domain.Verdict{Available: true, Status: status, Method: "LOOPIA"}, nil
	case api.StatusOccupied:
		return domain.Verdict{Available: false, Status: status, Method: "LOOPIA"}, nil
	case api.StatusRateLimited:
		return domain.Verdict{}, domain.NewLookupError(domain.KindRateLimited, fqdn, errors.New(status))
	default:
		return domain.Verdict{}, domain.NewLookupError(domain.KindProtocol, fqdn, fmt.Errorf("domainIsFree returned %s", status))
	}
}
