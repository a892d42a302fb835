package logbook

import "database/sql"

// DiaperSchema maps Diaper onto the diapers table. Search matches soil_type.
var DiaperSchema = Schema[Diaper, DiaperInput]{
	Kind:         "diaper",
	Table:        "diapers",
	IDPrefix:     "dpr-",
	OwnerColumn:  "owner_id",
	SearchColumn: "soil_type",
	Columns:      []string{"soil_type"},
	Bind: func(in DiaperInput) (EntryInput, []any) {
		return in.EntryInput, []any{in.SoilType}
	},
	Fields: func(d *Diaper) (*Entry, []any) {
		return &d.Entry, []any{&d.SoilType}
	},
}

// DiaperService is the ownership-enforcing service for diaper logs.
type DiaperService = Service[Diaper, DiaperInput]

// NewDiaperService builds a DiaperService backed by SQLite.
func NewDiaperService(db *sql.DB, observers ...Observer) *DiaperService {
	return NewService[Diaper, DiaperInput](DiaperSchema.Kind, NewSQLiteStore(db, DiaperSchema), observers...)
}
