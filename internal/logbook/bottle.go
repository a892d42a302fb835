package logbook

import "database/sql"

// BottleSchema maps Bottle onto the bottles table. Search matches brand.
var BottleSchema = Schema[Bottle, BottleInput]{
	Kind:         "bottle",
	Table:        "bottles",
	IDPrefix:     "btl-",
	OwnerColumn:  "owner_id",
	SearchColumn: "brand",
	Columns:      []string{"amount", "brand"},
	Bind: func(in BottleInput) (EntryInput, []any) {
		var amount int
		if in.Amount != nil {
			amount = *in.Amount
		}
		return in.EntryInput, []any{amount, in.Brand}
	},
	Fields: func(b *Bottle) (*Entry, []any) {
		return &b.Entry, []any{&b.Amount, &b.Brand}
	},
}

// BottleService is the ownership-enforcing service for feeding logs.
type BottleService = Service[Bottle, BottleInput]

// NewBottleService builds a BottleService backed by SQLite.
func NewBottleService(db *sql.DB, observers ...Observer) *BottleService {
	return NewService[Bottle, BottleInput](BottleSchema.Kind, NewSQLiteStore(db, BottleSchema), observers...)
}
