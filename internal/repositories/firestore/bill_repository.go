package firestore

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/bvs-supply/api/internal/domain"
	pfirestore "github.com/bvs-supply/api/internal/platform/firestore"
	"github.com/bvs-supply/api/internal/repositories"
)

type billDocument struct {
	OrderID       int64     `firestore:"order_id"`
	HotelID       string    `firestore:"user_id"`
	HotelName     string    `firestore:"hotel_name"`
	BillDate      string    `firestore:"bill_date"`
	DueDate       string    `firestore:"due_date"`
	TotalAmount   float64   `firestore:"total_amount"`
	Status        string    `firestore:"status"`
	Paid          bool      `firestore:"paid"`
	PaymentMethod string    `firestore:"payment_method"`
	Comments      string    `firestore:"comments"`
	CreatedAt     time.Time `firestore:"created_at"`
	UpdatedAt     time.Time `firestore:"updated_at"`
}

// BillRepository persists bills in Firestore.
type BillRepository struct {
	base     *pfirestore.BaseRepository[billDocument]
	provider *pfirestore.Provider
}

// NewBillRepository constructs a Firestore-backed bill repository.
func NewBillRepository(provider *pfirestore.Provider) (*BillRepository, error) {
	if provider == nil {
		return nil, errors.New("bill repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[billDocument](provider, billCollectionName, nil, nil)
	return &BillRepository{base: base, provider: provider}, nil
}

// Insert creates the bill document.
func (r *BillRepository) Insert(ctx context.Context, bill domain.Bill) error {
	if r == nil || r.provider == nil {
		return errors.New("bill repository not initialised")
	}
	if bill.ID <= 0 {
		return errors.New("bill id is required")
	}

	doc := fromDomainBill(bill)
	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.base.DocumentRef(ctx, strconv.FormatInt(bill.ID, 10))
		if err != nil {
			return err
		}
		return tx.Create(ref, doc)
	})
}

// FindByID loads a bill by its sequence id.
func (r *BillRepository) FindByID(ctx context.Context, billID int64) (domain.Bill, error) {
	if r == nil || r.base == nil {
		return domain.Bill{}, errors.New("bill repository not initialised")
	}

	doc, err := r.base.Get(ctx, strconv.FormatInt(billID, 10))
	if err != nil {
		return domain.Bill{}, err
	}
	return toDomainBill(billID, doc.Data), nil
}

// FindByOrder returns the bill belonging to the given order.
func (r *BillRepository) FindByOrder(ctx context.Context, orderID int64) (domain.Bill, error) {
	if r == nil || r.base == nil {
		return domain.Bill{}, errors.New("bill repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("order_id", "==", orderID).Limit(1)
	})
	if err != nil {
		return domain.Bill{}, err
	}
	if len(docs) == 0 {
		return domain.Bill{}, notFoundError{entity: "bill", key: strconv.FormatInt(orderID, 10)}
	}
	return toDomainBill(parseOrderID(docs[0].ID), docs[0].Data), nil
}

// ListByHotel returns a hotel's bills, newest first.
func (r *BillRepository) ListByHotel(ctx context.Context, hotelID string) ([]domain.Bill, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("bill repository not initialised")
	}
	trimmed := strings.TrimSpace(hotelID)
	if trimmed == "" {
		return nil, errors.New("hotel id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("user_id", "==", trimmed)
	})
	if err != nil {
		return nil, err
	}

	bills := make([]domain.Bill, 0, len(docs))
	for _, doc := range docs {
		bills = append(bills, toDomainBill(parseOrderID(doc.ID), doc.Data))
	}
	sort.Slice(bills, func(i, j int) bool {
		return bills[i].CreatedAt.After(bills[j].CreatedAt)
	})
	return bills, nil
}

// UpdatePayment records a settlement transition on the bill.
func (r *BillRepository) UpdatePayment(ctx context.Context, billID int64, update repositories.BillPaymentUpdate) (domain.Bill, error) {
	if r == nil || r.base == nil {
		return domain.Bill{}, errors.New("bill repository not initialised")
	}

	updates := []firestore.Update{
		{Path: "status", Value: string(update.Status)},
		{Path: "paid", Value: update.Status == domain.BillStatusPaid},
		{Path: "updated_at", Value: update.Now.UTC()},
	}
	if method := strings.TrimSpace(update.PaymentMethod); method != "" {
		updates = append(updates, firestore.Update{Path: "payment_method", Value: method})
	}
	if comments := strings.TrimSpace(update.Comments); comments != "" {
		updates = append(updates, firestore.Update{Path: "comments", Value: comments})
	}

	if _, err := r.base.Update(ctx, strconv.FormatInt(billID, 10), updates); err != nil {
		return domain.Bill{}, err
	}
	return r.FindByID(ctx, billID)
}

func fromDomainBill(bill domain.Bill) billDocument {
	return billDocument{
		OrderID:       bill.OrderID,
		HotelID:       strings.TrimSpace(bill.HotelID),
		HotelName:     strings.TrimSpace(bill.HotelName),
		BillDate:      bill.BillDate,
		DueDate:       bill.DueDate,
		TotalAmount:   bill.TotalAmount,
		Status:        string(bill.Status),
		Paid:          bill.Paid,
		PaymentMethod: strings.TrimSpace(bill.PaymentMethod),
		Comments:      strings.TrimSpace(bill.Comments),
		CreatedAt:     bill.CreatedAt,
		UpdatedAt:     bill.UpdatedAt,
	}
}

func toDomainBill(billID int64, doc billDocument) domain.Bill {
	return domain.Bill{
		ID:            billID,
		OrderID:       doc.OrderID,
		HotelID:       doc.HotelID,
		HotelName:     doc.HotelName,
		BillDate:      doc.BillDate,
		DueDate:       doc.DueDate,
		TotalAmount:   doc.TotalAmount,
		Status:        domain.BillStatus(doc.Status),
		Paid:          doc.Paid,
		PaymentMethod: doc.PaymentMethod,
		Comments:      doc.Comments,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}
