package partner

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
)

// DefaultPlacePictureURL is used when a client is created without a picture
const DefaultPlacePictureURL = "https://cdn.stockroute.app/placeholders/shop.png"

var phonePattern = regexp.MustCompile(`^\+212[67]\d{8}$`)

// Client is a shop served by a seller and, optionally, one of the
// seller's delivery men. SectorID becomes nil when its sector is deleted.
type Client struct {
	shared.BaseAggregateRoot
	ClientNumber   string
	Name           string
	NameKey        string
	Location       string
	TypeOfBusiness string
	PhoneNumber    string
	PictureURL     string
	CityID         uuid.UUID
	SectorID       *uuid.UUID
	SellerID       uuid.UUID
	DeliveryManID  *uuid.UUID
	NumberOfOrders int64
}

// NewClientParams are the attributes of a new client
type NewClientParams struct {
	Name           string
	Location       string
	TypeOfBusiness string
	PhoneNumber    string
	PictureURL     string
	CityID         uuid.UUID
	SectorID       uuid.UUID
	SellerID       uuid.UUID
	DeliveryManID  *uuid.UUID
}

// NewClient creates a client; the number is assigned separately
func NewClient(p NewClientParams) (*Client, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, shared.NewValidationError("client name is required")
	}
	if strings.TrimSpace(p.Location) == "" {
		return nil, shared.NewValidationError("client location is required")
	}
	if strings.TrimSpace(p.TypeOfBusiness) == "" {
		return nil, shared.NewValidationError("type of business is required")
	}
	phone := strings.TrimSpace(p.PhoneNumber)
	if !phonePattern.MatchString(phone) {
		return nil, shared.NewValidationError("invalid phone number %q", phone)
	}
	if p.CityID == uuid.Nil || p.SectorID == uuid.Nil || p.SellerID == uuid.Nil {
		return nil, shared.NewValidationError("client requires a city, a sector and a seller")
	}
	picture := p.PictureURL
	if picture == "" {
		picture = DefaultPlacePictureURL
	}
	sectorID := p.SectorID
	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NameKey:           shared.NameKey(name),
		Location:          strings.TrimSpace(p.Location),
		TypeOfBusiness:    strings.TrimSpace(p.TypeOfBusiness),
		PhoneNumber:       phone,
		PictureURL:        picture,
		CityID:            p.CityID,
		SectorID:          &sectorID,
		SellerID:          p.SellerID,
		DeliveryManID:     p.DeliveryManID,
	}, nil
}

// NewClientNumber renders CL-<unix millis>-<3 random digits>
func NewClientNumber(now time.Time) string {
	return fmt.Sprintf("CL-%d-%03d", now.UnixMilli(), rand.IntN(1000))
}

// IsServedBy reports whether the delivery man is assigned to this client
func (c *Client) IsServedBy(deliveryManID uuid.UUID) bool {
	return c.DeliveryManID != nil && *c.DeliveryManID == deliveryManID
}
