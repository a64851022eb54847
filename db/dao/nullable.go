package dao

import "database/sql"

type NullInt64 struct {
	sql.NullInt64
}

// AsPtr returns nil for NULL.
func (ni *NullInt64) AsPtr() *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func FromPtr(v *int64) NullInt64 {
	if v == nil {
		return NullInt64{}
	}
	return NullInt64{sql.NullInt64{Int64: *v, Valid: true}}
}

type NullString struct {
	sql.NullString
}

func (ns *NullString) OrEmpty() string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
