package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/geo"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SectorLookup resolves sectors
type SectorLookup interface {
	FindSector(ctx context.Context, id uuid.UUID) (*geo.Sector, error)
}

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
	sectors  SectorLookup
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, sectors SectorLookup, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		sectors:  sectors,
		logger:   logger,
	}
}

// Create creates a user. Only admins create users.
func (s *UserService) Create(ctx context.Context, actor identity.Actor, req CreateUserRequest) (*UserInfo, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, identity.NormalizeUsername(req.Username))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Username already exists")
	}

	user, err := identity.NewUser(req.Username, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}

	sectorIDs := uniqueIDs(req.SectorIDs)
	if err := s.checkSectors(ctx, sectorIDs); err != nil {
		return nil, err
	}

	switch user.Role {
	case identity.RoleDelivery:
		if req.SellerID == nil {
			return nil, shared.NewValidationError("delivery users require a seller_id")
		}
		seller, err := s.userRepo.FindByID(ctx, *req.SellerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("seller %s does not exist", *req.SellerID)
			}
			return nil, err
		}
		if err := user.AssignToSeller(seller, sectorIDs); err != nil {
			return nil, err
		}
	case identity.RoleSeller:
		if req.SellerID != nil {
			return nil, shared.NewValidationError("only delivery users belong to a seller")
		}
		user.SectorIDs = sectorIDs
	default:
		if req.SellerID != nil || len(sectorIDs) > 0 {
			return nil, shared.NewValidationError("%s users have no seller or sectors", user.Role)
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)
	info := ToUserInfo(user)
	return &info, nil
}

func (s *UserService) checkSectors(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.sectors.FindSector(ctx, id); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError("sector %s does not exist", id)
			}
			return err
		}
	}
	return nil
}

// List returns users, optionally filtered by role or seller
func (s *UserService) List(ctx context.Context, actor identity.Actor, req UserListRequest) ([]UserInfo, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	filter := identity.UserFilter{SellerID: req.SellerID}
	if req.Role != "" {
		role := identity.Role(req.Role)
		if !role.IsValid() {
			return nil, shared.NewValidationError("invalid role %q", req.Role)
		}
		filter.Role = &role
	}

	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]UserInfo, len(users))
	for i := range users {
		out[i] = ToUserInfo(&users[i])
	}
	return out, nil
}

// SeedAdmin creates the initial admin account unless the username is taken.
// It returns true when a user was created.
func (s *UserService) SeedAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, identity.NormalizeUsername(username))
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Debug("Admin seed skipped, user exists", zap.String("username", username))
		return false, nil
	}

	admin, err := identity.NewUser(username, password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("Admin user seeded", zap.String("username", admin.Username))
	return true, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
