// Package accounts knows the supported bank statement layouts and looks up
// the accounts of a project.
package accounts

import (
	"fmt"

	"github.com/fimo-dev/fimo/internal/model"
)

// Service provides in-memory lookup over a project's accounts.
type Service struct {
	accounts []model.Account
	byName   map[string]model.Account
}

// NewService creates a Service from a slice of accounts. Account names must
// be unique.
func NewService(accounts []model.Account) (*Service, error) {
	byName := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		if a.Name == "" {
			return nil, fmt.Errorf("account with path %q has no name", a.Path)
		}
		if _, dup := byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate account %q", a.Name)
		}
		byName[a.Name] = a
	}
	return &Service{accounts: accounts, byName: byName}, nil
}

// All returns all accounts in configuration order.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by name.
func (s *Service) Get(name string) (model.Account, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Exists reports whether an account name exists.
func (s *Service) Exists(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// BySpender returns all accounts of the given spender.
func (s *Service) BySpender(spender string) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Spender == spender {
			result = append(result, a)
		}
	}
	return result
}

// Select returns the named accounts, or all accounts when names is empty.
func (s *Service) Select(names []string) ([]model.Account, error) {
	if len(names) == 0 {
		return s.accounts, nil
	}
	result := make([]model.Account, 0, len(names))
	for _, name := range names {
		a, ok := s.byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown account %q", name)
		}
		result = append(result, a)
	}
	return result, nil
}
