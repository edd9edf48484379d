package models

// HarvestRecord captures one harvest event on a parcel.
// Dates are stored as date-only strings ("2006-01-02", possibly with a
// trailing time component that callers must ignore).
type HarvestRecord struct {
	Date     string `bson:"date" json:"date"`
	ParcelID string `bson:"parcel_id,omitempty" json:"parcel_id,omitempty"`
}

// SaleRecord captures one sale transaction.
type SaleRecord struct {
	Date       string  `bson:"date" json:"date"`
	QuantityKg float64 `bson:"quantity_kg" json:"quantity_kg"`
	PricePerKg float64 `bson:"price_per_kg" json:"price_per_kg"`
}

// Revenue returns the sale's revenue contribution in lei.
func (s SaleRecord) Revenue() float64 {
	return s.QuantityKg * s.PricePerKg
}

// ExpenseRecord captures one operating expense.
type ExpenseRecord struct {
	Date      string  `bson:"date" json:"date"`
	AmountLei float64 `bson:"amount_lei" json:"amount_lei"`
}

// ActivityRecord captures a field treatment application. PauseDays is the
// mandated re-entry interval in days; harvesting the treated parcel is
// disallowed until it elapses.
type ActivityRecord struct {
	ID              string  `bson:"_id" json:"id"`
	ParcelID        string  `bson:"parcel_id,omitempty" json:"parcel_id,omitempty"`
	ApplicationDate string  `bson:"application_date" json:"application_date"`
	ActivityType    string  `bson:"activity_type,omitempty" json:"activity_type,omitempty"`
	PauseDays       float64 `bson:"pause_days" json:"pause_days"`
	Product         string  `bson:"product,omitempty" json:"product,omitempty"`
	Operator        string  `bson:"operator,omitempty" json:"operator,omitempty"`
}

// Parcel is a cultivated plot belonging to a tenant.
type Parcel struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// Snapshot is the per-tenant, already-isolated read of all operational rows
// consumed by one engine invocation. The storage layer owns these rows; the
// analytics core never writes them.
type Snapshot struct {
	Harvests   []HarvestRecord
	Sales      []SaleRecord
	Expenses   []ExpenseRecord
	Activities []ActivityRecord
	Parcels    []Parcel
}
