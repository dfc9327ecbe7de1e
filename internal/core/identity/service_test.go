package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeIdentityRepo struct {
	identities map[int64]*Identity
	sequence   int64
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: make(map[int64]*Identity)}
}

func (r *fakeIdentityRepo) Create(_ context.Context, ident *Identity) (*Identity, error) {
	for _, existing := range r.identities {
		if existing.Name == ident.Name {
			return nil, ErrNameAlreadyExists
		}
	}
	clone := *ident
	r.sequence++
	clone.ID = r.sequence
	r.identities[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeIdentityRepo) FindByID(_ context.Context, id int64) (*Identity, error) {
	ident, ok := r.identities[id]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	clone := *ident
	return &clone, nil
}

func (r *fakeIdentityRepo) FindByName(_ context.Context, name string) (*Identity, error) {
	for _, ident := range r.identities {
		if ident.Name == name {
			clone := *ident
			return &clone, nil
		}
	}
	return nil, ErrIdentityNotFound
}

func (r *fakeIdentityRepo) List(_ context.Context, filter ListIdentitiesFilter) ([]*Identity, error) {
	var out []*Identity
	for id := int64(1); id <= r.sequence; id++ {
		ident, ok := r.identities[id]
		if !ok {
			continue
		}
		if filter.Role != nil && ident.Role != *filter.Role {
			continue
		}
		clone := *ident
		out = append(out, &clone)
	}
	return out, nil
}

func TestService_CreateIdentity_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now})

	created, err := svc.CreateIdentity(context.Background(), CreateIdentityInput{
		Name: "  AIA  ",
		Role: RoleInsurer,
	})
	if err != nil {
		t.Fatalf("CreateIdentity returned error: %v", err)
	}

	if created.Name != "AIA" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Role != RoleInsurer {
		t.Fatalf("expected role insurer, got %s", created.Role)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateIdentity_DuplicateName(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()})

	if _, err := svc.CreateIdentity(context.Background(), CreateIdentityInput{
		Name: "AIA",
		Role: RoleInsurer,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateIdentity(context.Background(), CreateIdentityInput{
		Name: "AIA",
		Role: RoleAdmin,
	})
	if !errors.Is(err, ErrNameAlreadyExists) {
		t.Fatalf("expected ErrNameAlreadyExists, got %v", err)
	}
}

func TestService_CreateIdentity_InvalidRole(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeIdentityRepo(), &stubClock{now: time.Now().UTC()})

	_, err := svc.CreateIdentity(context.Background(), CreateIdentityInput{
		Name: "AIA",
		Role: Role("broker"),
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestService_ListIdentities_FiltersByRole(t *testing.T) {
	t.Parallel()

	repo := newFakeIdentityRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()})

	seeds := []CreateIdentityInput{
		{Name: "HR Admin", Role: RoleAdmin},
		{Name: "AIA", Role: RoleInsurer},
		{Name: "Singlife", Role: RoleInsurer},
	}
	for _, in := range seeds {
		if _, err := svc.CreateIdentity(context.Background(), in); err != nil {
			t.Fatalf("CreateIdentity returned error: %v", err)
		}
	}

	role := RoleInsurer
	insurers, err := svc.ListIdentities(context.Background(), ListIdentitiesInput{Role: &role})
	if err != nil {
		t.Fatalf("ListIdentities returned error: %v", err)
	}
	if len(insurers) != 2 {
		t.Fatalf("expected 2 insurers, got %d", len(insurers))
	}

	all, err := svc.ListIdentities(context.Background(), ListIdentitiesInput{})
	if err != nil {
		t.Fatalf("ListIdentities returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 identities, got %d", len(all))
	}
}

func TestService_GetIdentity_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeIdentityRepo(), &stubClock{now: time.Now().UTC()})

	_, err := svc.GetIdentity(context.Background(), GetIdentityInput{ID: 42})
	if !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}
