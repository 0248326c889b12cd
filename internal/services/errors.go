package services

import (
	"errors"

	"github.com/bvs-supply/api/internal/repositories"
)

var (
	// ErrOrderInvalidInput indicates the caller supplied an invalid order payload.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order does not exist or is not visible to the caller.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderStateConflict indicates the order's lifecycle state forbids the operation.
	ErrOrderStateConflict = errors.New("order: state conflict")
	// ErrProductNotFound indicates a referenced product does not exist.
	ErrProductNotFound = errors.New("product: not found")
	// ErrProductUnavailable indicates a referenced product is not currently orderable.
	ErrProductUnavailable = errors.New("product: unavailable")
	// ErrProductNotOnOrder indicates a price was supplied for a product absent from the order.
	ErrProductNotOnOrder = errors.New("product: not on order")
	// ErrBillNotFound indicates the bill does not exist or is not visible to the caller.
	ErrBillNotFound = errors.New("bill: not found")
	// ErrBillStateConflict indicates the bill's settlement state forbids the operation.
	ErrBillStateConflict = errors.New("bill: state conflict")
	// ErrStoreUnavailable indicates a transient persistence outage.
	ErrStoreUnavailable = errors.New("store: unavailable")
)

// mapRepositoryError translates categorised persistence failures into the
// supplied sentinel errors, falling back to the raw error for anything else.
func mapRepositoryError(err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return notFound
		case repoErr.IsConflict():
			return conflict
		case repoErr.IsUnavailable():
			return ErrStoreUnavailable
		}
	}
	return err
}
