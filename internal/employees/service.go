package employees

import "context"

// Service encapsulates directory business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a directory entry using OIDC claims
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*Employee, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	dept, _ := claims["department"].(string)
	if sub == "" {
		return nil, nil
	}
	e := &Employee{
		Sub:        sub,
		Email:      email,
		Name:       name,
		Department: dept,
	}
	return s.repo.UpsertBySub(ctx, e)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*Employee, error) {
	return s.repo.GetBySub(ctx, sub)
}

// Exists reports whether the directory knows the given subject. Used by the
// assignment engine to reject fan-out to unknown employees.
func (s *Service) Exists(ctx context.Context, sub string) (bool, error) {
	e, err := s.repo.GetBySub(ctx, sub)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}
