package firestore

import (
	"context"
	"errors"
	"strings"

	domain "github.com/bvs-supply/api/internal/domain"
	pfirestore "github.com/bvs-supply/api/internal/platform/firestore"
)

const productCollection = "products"

type productDocument struct {
	Name        string `firestore:"name"`
	Unit        string `firestore:"unit"`
	Category    string `firestore:"category"`
	IsAvailable bool   `firestore:"is_available"`
}

// ProductRepository reads catalog documents maintained by the external admin tool.
type ProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product reader.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[productDocument](provider, productCollection, nil, nil)
	return &ProductRepository{base: base}, nil
}

// FindByID loads a single product.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	trimmed := strings.TrimSpace(productID)
	if trimmed == "" {
		return domain.Product{}, errors.New("product id is required")
	}

	doc, err := r.base.Get(ctx, trimmed)
	if err != nil {
		return domain.Product{}, err
	}
	return toDomainProduct(doc.ID, doc.Data), nil
}

// FindByIDs loads the given products, skipping ids that do not exist. Callers
// detect missing products by absence from the returned map.
func (r *ProductRepository) FindByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}

	products := make(map[string]domain.Product, len(productIDs))
	for _, id := range productIDs {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, seen := products[trimmed]; seen {
			continue
		}
		doc, err := r.base.Get(ctx, trimmed)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		products[trimmed] = toDomainProduct(doc.ID, doc.Data)
	}
	return products, nil
}

func isNotFound(err error) bool {
	var repoErr interface{ IsNotFound() bool }
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func toDomainProduct(id string, doc productDocument) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        doc.Name,
		Unit:        doc.Unit,
		Category:    doc.Category,
		IsAvailable: doc.IsAvailable,
	}
}
