package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	domainAccess "github.com/AzielCF/az-telebox/domains/access"
	domainUser "github.com/AzielCF/az-telebox/domains/user"
)

type accessService struct {
	users domainUser.IUserRepository
}

// NewAccessService builds the access evaluator over the user store. Every
// evaluation re-reads storage so a grant from another process is visible
// immediately.
func NewAccessService(users domainUser.IUserRepository) domainAccess.IAccessUsecase {
	return &accessService{users: users}
}

func (s *accessService) Evaluate(ctx context.Context, id int64) (domainAccess.Decision, error) {
	ok, err := s.users.HasAccess(ctx, id)
	if err != nil {
		return domainAccess.DecisionDenied, err
	}
	if !ok {
		return domainAccess.DecisionDenied, nil
	}
	return domainAccess.DecisionGranted, nil
}

func (s *accessService) Grant(ctx context.Context, id int64) error {
	if err := s.users.GrantAccess(ctx, id); err != nil {
		return err
	}
	logrus.Infof("[ACCESS] Granted %s window to user %d", domainUser.AccessWindow, id)
	return nil
}
