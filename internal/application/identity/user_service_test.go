package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/geo"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memUsers struct {
	byID map[uuid.UUID]*identity.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[uuid.UUID]*identity.User)}
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUsers) List(_ context.Context, filter identity.UserFilter) ([]identity.User, error) {
	out := make([]identity.User, 0)
	for _, u := range m.byID {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.SellerID != nil && (u.SellerID == nil || *u.SellerID != *filter.SellerID) {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUsers) Create(_ context.Context, user *identity.User) error {
	m.byID[user.ID] = user
	return nil
}

type knownSectors map[uuid.UUID]bool

func (k knownSectors) FindSector(_ context.Context, id uuid.UUID) (*geo.Sector, error) {
	if !k[id] {
		return nil, shared.ErrNotFound
	}
	return &geo.Sector{BaseEntity: shared.BaseEntity{ID: id}}, nil
}

var adminActor = identity.NewActor(uuid.New(), identity.RoleAdmin)

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	north, south, east := uuid.New(), uuid.New(), uuid.New()
	users := newMemUsers()
	svc := NewUserService(users, knownSectors{north: true, south: true, east: true}, zap.NewNop())

	seller, err := svc.Create(ctx, adminActor, CreateUserRequest{
		Username:  "Seller.One",
		Password:  "password123",
		Role:      "seller",
		SectorIDs: []uuid.UUID{north, south, north},
	})
	require.NoError(t, err)
	assert.Equal(t, "seller.one", seller.Username)
	assert.Equal(t, []uuid.UUID{north, south}, seller.SectorIDs)

	t.Run("delivery inherits seller sectors", func(t *testing.T) {
		dm, err := svc.Create(ctx, adminActor, CreateUserRequest{
			Username: "driver1", Password: "password123", Role: "delivery", SellerID: &seller.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, dm.SellerID)
		assert.Equal(t, seller.ID, *dm.SellerID)
		assert.Equal(t, []uuid.UUID{north, south}, dm.SectorIDs)
	})

	t.Run("delivery sectors must be a subset", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, CreateUserRequest{
			Username: "driver2", Password: "password123", Role: "delivery", SellerID: &seller.ID,
			SectorIDs: []uuid.UUID{east},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("delivery requires a seller", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, CreateUserRequest{Username: "driver3", Password: "password123", Role: "delivery"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown sector", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, CreateUserRequest{
			Username: "seller2", Password: "password123", Role: "seller", SectorIDs: []uuid.UUID{uuid.New()},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("instant users have no sectors", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, CreateUserRequest{
			Username: "counter1", Password: "password123", Role: "instant", SectorIDs: []uuid.UUID{north},
		})
		assert.ErrorIs(t, err, shared.ErrValidation)

		u, err := svc.Create(ctx, adminActor, CreateUserRequest{Username: "counter1", Password: "password123", Role: "instant"})
		require.NoError(t, err)
		assert.Equal(t, "instant", u.Role)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Create(ctx, adminActor, CreateUserRequest{Username: "SELLER.ONE", Password: "password123", Role: "seller"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("admins only", func(t *testing.T) {
		_, err := svc.Create(ctx, identity.NewActor(seller.ID, identity.RoleSeller), CreateUserRequest{
			Username: "sneaky", Password: "password123", Role: "admin",
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	svc := NewUserService(users, knownSectors{}, zap.NewNop())
	for _, req := range []CreateUserRequest{
		{Username: "seller1", Password: "password123", Role: "seller"},
		{Username: "seller2", Password: "password123", Role: "seller"},
		{Username: "counter", Password: "password123", Role: "instant"},
	} {
		_, err := svc.Create(ctx, adminActor, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, adminActor, UserListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sellers, err := svc.List(ctx, adminActor, UserListRequest{Role: "seller"})
	require.NoError(t, err)
	assert.Len(t, sellers, 2)

	_, err = svc.List(ctx, adminActor, UserListRequest{Role: "boss"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUserService_SeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	svc := NewUserService(users, knownSectors{}, zap.NewNop())

	created, err := svc.SeedAdmin(ctx, "admin", "change-me-please")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SeedAdmin(ctx, "Admin", "another-password")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, users.byID, 1)

	created, err = svc.SeedAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

type stubIssuer struct {
	err error
}

func (s stubIssuer) GenerateToken(userID uuid.UUID, _ string, role identity.Role) (*auth.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Token{
		AccessToken: userID.String() + ":" + string(role),
		ExpiresAt:   time.Now().Add(time.Hour),
		TokenType:   "Bearer",
	}, nil
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	u, err := identity.NewUser("seller1", "password123", identity.RoleSeller)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))

	svc := NewAuthService(users, stubIssuer{}, zap.NewNop())

	res, err := svc.Login(ctx, LoginInput{Username: " Seller1 ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID.String()+":seller", res.AccessToken)
	assert.Equal(t, "seller", res.User.Role)

	_, err = svc.Login(ctx, LoginInput{Username: "seller1", Password: "wrong-password"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Username: "ghost", Password: "password123"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	failing := NewAuthService(users, stubIssuer{err: errors.New("boom")}, zap.NewNop())
	_, err = failing.Login(ctx, LoginInput{Username: "seller1", Password: "password123"})
	assert.Error(t, err)
}
