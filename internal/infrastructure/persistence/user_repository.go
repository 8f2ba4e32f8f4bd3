package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts the user and its sector memberships in one transaction
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.UserModelFromDomain(user)).Error; err != nil {
			return err
		}
		if len(user.SectorIDs) == 0 {
			return nil
		}
		links := make([]models.UserSectorModel, len(user.SectorIDs))
		for i, sectorID := range user.SectorIDs {
			links[i] = models.UserSectorModel{UserID: user.ID, SectorID: sectorID}
		}
		return tx.Create(&links).Error
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername finds a user by normalized username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.findOne(ctx, "username = ?", identity.NormalizeUsername(username))
}

func (r *GormUserRepository) findOne(ctx context.Context, cond string, arg any) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	sectors, err := r.sectorsOf(ctx, []uuid.UUID{model.ID})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(sectors[model.ID]), nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("username = ?", identity.NormalizeUsername(username)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns users ordered by username
func (r *GormUserRepository) List(ctx context.Context, filter identity.UserFilter) ([]identity.User, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}

	var rows []models.UserModel
	if err := query.Order("username ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	sectors, err := r.sectorsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain(sectors[rows[i].ID])
	}
	return users, nil
}

func (r *GormUserRepository) sectorsOf(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var links []models.UserSectorModel
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("sector_id ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	for _, l := range links {
		out[l.UserID] = append(out[l.UserID], l.SectorID)
	}
	return out, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
