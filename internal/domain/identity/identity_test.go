package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func TestActorScopes(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name         string
		role         Role
		unrestricted bool
		seller       bool
		delivery     bool
		deny         bool
	}{
		{"admin sees everything", RoleAdmin, true, false, false, false},
		{"seller sees own rows", RoleSeller, false, true, false, false},
		{"instant seller sees own rows", RoleInstant, false, true, false, false},
		{"delivery sees assigned rows", RoleDelivery, false, false, true, false},
		{"unknown role sees nothing", Role("guest"), false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewActor(id, tt.role).SaleScope()
			assert.Equal(t, tt.unrestricted, s.Unrestricted)
			assert.Equal(t, tt.deny, s.Deny)
			if tt.seller {
				require.NotNil(t, s.SellerID)
				assert.Equal(t, id, *s.SellerID)
			} else {
				assert.Nil(t, s.SellerID)
			}
			if tt.delivery {
				require.NotNil(t, s.DeliveryManID)
				assert.Equal(t, id, *s.DeliveryManID)
			} else {
				assert.Nil(t, s.DeliveryManID)
			}
		})
	}
}

func TestStatsScope(t *testing.T) {
	adminID, sellerID, other := uuid.New(), uuid.New(), uuid.New()

	admin := NewActor(adminID, RoleAdmin)
	assert.True(t, admin.StatsScope(nil).Unrestricted)

	filtered := admin.StatsScope(&other)
	require.NotNil(t, filtered.SellerID)
	assert.Equal(t, other, *filtered.SellerID)

	// a seller's filter is ignored
	seller := NewActor(sellerID, RoleSeller)
	forced := seller.StatsScope(&other)
	require.NotNil(t, forced.SellerID)
	assert.Equal(t, sellerID, *forced.SellerID)
}

func TestScopeAllows(t *testing.T) {
	sellerID, deliveryID := uuid.New(), uuid.New()

	assert.True(t, Unrestricted().Allows(uuid.New(), nil))
	assert.True(t, SellerScope(sellerID).Allows(sellerID, nil))
	assert.False(t, SellerScope(sellerID).Allows(uuid.New(), nil))
	assert.True(t, DeliveryScope(deliveryID).Allows(uuid.New(), &deliveryID))
	assert.False(t, DeliveryScope(deliveryID).Allows(sellerID, nil))
	assert.False(t, Scope{Deny: true}.Allows(sellerID, &deliveryID))
}

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Alice ", "s3cret-pass", RoleSeller)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.VerifyPassword("s3cret-pass"))
	assert.False(t, u.VerifyPassword("wrong-pass"))

	_, err = NewUser("al", "s3cret-pass", RoleSeller)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewUser("alice", "short", RoleSeller)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewUser("alice", "s3cret-pass", Role("owner"))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestAssignToSeller(t *testing.T) {
	s1, s2, foreign := uuid.New(), uuid.New(), uuid.New()
	seller, err := NewUser("seller1", "password1", RoleSeller)
	require.NoError(t, err)
	seller.SectorIDs = []uuid.UUID{s1, s2}

	t.Run("inherits seller sectors", func(t *testing.T) {
		d, err := NewUser("driver1", "password1", RoleDelivery)
		require.NoError(t, err)
		require.NoError(t, d.AssignToSeller(seller, nil))
		assert.Equal(t, seller.ID, *d.SellerID)
		assert.ElementsMatch(t, []uuid.UUID{s1, s2}, d.SectorIDs)
	})

	t.Run("subset accepted", func(t *testing.T) {
		d, err := NewUser("driver2", "password1", RoleDelivery)
		require.NoError(t, err)
		require.NoError(t, d.AssignToSeller(seller, []uuid.UUID{s2}))
		assert.True(t, d.ServesSector(s2))
		assert.False(t, d.ServesSector(s1))
	})

	t.Run("foreign sector rejected", func(t *testing.T) {
		d, err := NewUser("driver3", "password1", RoleDelivery)
		require.NoError(t, err)
		err = d.AssignToSeller(seller, []uuid.UUID{foreign})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("non seller parent rejected", func(t *testing.T) {
		d, err := NewUser("driver4", "password1", RoleDelivery)
		require.NoError(t, err)
		other, err := NewUser("driver5", "password1", RoleDelivery)
		require.NoError(t, err)
		assert.ErrorIs(t, d.AssignToSeller(other, nil), shared.ErrValidation)
	})
}
