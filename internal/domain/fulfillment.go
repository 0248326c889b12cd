package domain

// VegetableTotal aggregates one product's quantity across all orders for a
// delivery date.
type VegetableTotal struct {
	ProductID     string
	Name          string
	Unit          string
	Category      string
	TotalQuantity float64
	OrderCount    int
}

// VegetableReport is the purchase list for one delivery date.
type VegetableReport struct {
	Date           string
	Totals         []VegetableTotal
	CategoryTotals map[string]float64
	OrderCount     int
}

// HotelOrderLine is a product line inside a hotel order summary.
type HotelOrderLine struct {
	ProductID string
	Name      string
	Quantity  float64
	Unit      string
}

// HotelOrderSummary is one order as shown on the per-hotel delivery report.
type HotelOrderSummary struct {
	OrderID             int64
	Status              OrderStatus
	SpecialInstructions string
	Items               []HotelOrderLine
}

// HotelOrdersGroup collects a hotel's orders for a delivery date.
type HotelOrdersGroup struct {
	HotelID   string
	HotelName string
	Phone     string
	Address   string
	Orders    []HotelOrderSummary
}

// HotelOrdersReport lists every hotel with orders for one delivery date.
type HotelOrdersReport struct {
	Date       string
	Hotels     []HotelOrdersGroup
	OrderCount int
}

// FillingHotel is a hotel axis entry on the filling matrix.
type FillingHotel struct {
	ID   string
	Name string
}

// FillingRow is one product row on the filling matrix; Quantities is keyed by
// hotel id.
type FillingRow struct {
	ProductID  string
	Name       string
	Unit       string
	Quantities map[string]float64
	Total      float64
}

// FillingMatrix is the product-by-hotel packing grid for one delivery date.
type FillingMatrix struct {
	Date   string
	Hotels []FillingHotel
	Rows   []FillingRow
}
