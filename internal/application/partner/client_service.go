package partner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/geo"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/domain/partner"
	"github.com/stockroute/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const clientNumberAttempts = 5

// SectorLookup resolves sectors
type SectorLookup interface {
	FindSector(ctx context.Context, id uuid.UUID) (*geo.Sector, error)
}

// UserLookup resolves users
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo partner.ClientRepository
	sectors    SectorLookup
	users      UserLookup
	logger     *zap.Logger
	now        func() time.Time
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, sectors SectorLookup, users UserLookup, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		sectors:    sectors,
		users:      users,
		logger:     logger,
		now:        time.Now,
	}
}

// Create registers a client for the acting seller
func (s *ClientService) Create(ctx context.Context, actor identity.Actor, req CreateClientRequest) (*ClientResponse, error) {
	if actor.Role != identity.RoleSeller {
		return nil, shared.ErrForbidden
	}

	seller, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !seller.ServesSector(req.SectorID) {
		return nil, shared.NewValidationError("sector %s is not one of your sectors", req.SectorID)
	}
	sector, err := s.sectors.FindSector(ctx, req.SectorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("sector %s does not exist", req.SectorID)
		}
		return nil, err
	}

	if req.DeliveryManID != nil {
		if err := s.checkDeliveryMan(ctx, seller.ID, *req.DeliveryManID, req.SectorID); err != nil {
			return nil, err
		}
	}

	client, err := partner.NewClient(partner.NewClientParams{
		Name:           req.Name,
		Location:       req.Location,
		TypeOfBusiness: req.TypeOfBusiness,
		PhoneNumber:    req.PhoneNumber,
		PictureURL:     req.PictureURL,
		CityID:         sector.CityID,
		SectorID:       sector.ID,
		SellerID:       seller.ID,
		DeliveryManID:  req.DeliveryManID,
	})
	if err != nil {
		return nil, err
	}

	exists, err := s.clientRepo.ExistsByNameKey(ctx, seller.ID, client.NameKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Client with this name already exists")
	}

	number, err := s.allocateNumber(ctx)
	if err != nil {
		return nil, err
	}
	client.ClientNumber = number

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("client_number", client.ClientNumber),
		zap.String("seller_id", seller.ID.String()),
	)
	resp := ToClientResponse(client)
	return &resp, nil
}

func (s *ClientService) checkDeliveryMan(ctx context.Context, sellerID, deliveryManID, sectorID uuid.UUID) error {
	dm, err := s.users.FindByID(ctx, deliveryManID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("delivery man %s does not exist", deliveryManID)
		}
		return err
	}
	if dm.Role != identity.RoleDelivery || dm.SellerID == nil || *dm.SellerID != sellerID {
		return shared.NewValidationError("delivery man %s does not belong to you", deliveryManID)
	}
	if !dm.ServesSector(sectorID) {
		return shared.NewValidationError("delivery man %s does not serve sector %s", deliveryManID, sectorID)
	}
	return nil
}

// allocateNumber draws client numbers until one is unused
func (s *ClientService) allocateNumber(ctx context.Context) (string, error) {
	for range clientNumberAttempts {
		number := partner.NewClientNumber(s.now())
		exists, err := s.clientRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", shared.NewDomainError(shared.CodeAlreadyExists, "could not allocate a unique client number")
}

// List returns a page of clients visible to the actor
func (s *ClientService) List(ctx context.Context, actor identity.Actor, req ClientListRequest) (*shared.Paginated[ClientResponse], error) {
	page := shared.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
	clients, total, err := s.clientRepo.List(ctx, partner.ClientFilter{
		Scope:      actor.ClientScope(),
		SectorID:   req.SectorID,
		CityID:     req.CityID,
		Search:     req.Search,
		Pagination: page,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	result := shared.NewPaginated(out, total, page)
	return &result, nil
}

// Get returns one client visible to the actor
func (s *ClientService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindScoped(ctx, id, actor.ClientScope())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("client", id)
		}
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// IncrementOrders bumps a client's order counter
func (s *ClientService) IncrementOrders(ctx context.Context, id uuid.UUID, by int64) error {
	return s.clientRepo.IncrementOrders(ctx, id, by)
}
