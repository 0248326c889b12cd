package firestore

import (
	"context"
	"errors"
	"strings"

	domain "github.com/bvs-supply/api/internal/domain"
	pfirestore "github.com/bvs-supply/api/internal/platform/firestore"
)

const hotelCollection = "users"

type hotelDocument struct {
	HotelName string `firestore:"hotel_name"`
	Phone     string `firestore:"phone"`
	Address   string `firestore:"address"`
}

// HotelRepository reads hotel profiles maintained by the external profile service.
type HotelRepository struct {
	base *pfirestore.BaseRepository[hotelDocument]
}

// NewHotelRepository constructs a Firestore-backed hotel reader.
func NewHotelRepository(provider *pfirestore.Provider) (*HotelRepository, error) {
	if provider == nil {
		return nil, errors.New("hotel repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[hotelDocument](provider, hotelCollection, nil, nil)
	return &HotelRepository{base: base}, nil
}

// FindByID loads a single hotel profile.
func (r *HotelRepository) FindByID(ctx context.Context, hotelID string) (domain.Hotel, error) {
	if r == nil || r.base == nil {
		return domain.Hotel{}, errors.New("hotel repository not initialised")
	}
	trimmed := strings.TrimSpace(hotelID)
	if trimmed == "" {
		return domain.Hotel{}, errors.New("hotel id is required")
	}

	doc, err := r.base.Get(ctx, trimmed)
	if err != nil {
		return domain.Hotel{}, err
	}
	return toDomainHotel(doc.ID, doc.Data), nil
}

// FindByIDs loads the given hotels, skipping ids that do not exist.
func (r *HotelRepository) FindByIDs(ctx context.Context, hotelIDs []string) (map[string]domain.Hotel, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("hotel repository not initialised")
	}

	hotels := make(map[string]domain.Hotel, len(hotelIDs))
	for _, id := range hotelIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, seen := hotels[trimmed]; seen {
			continue
		}
		doc, err := r.base.Get(ctx, trimmed)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		hotels[trimmed] = toDomainHotel(doc.ID, doc.Data)
	}
	return hotels, nil
}

func toDomainHotel(id string, doc hotelDocument) domain.Hotel {
	return domain.Hotel{
		ID:        id,
		HotelName: doc.HotelName,
		Phone:     doc.Phone,
		Address:   doc.Address,
	}
}
