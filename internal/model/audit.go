package model

import "time"

// Audit carries the bookkeeping columns shared by mutable rows. Stamping is
// explicit at the insert/update call sites rather than filled in by any
// generic machinery.
type Audit struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy int64     `json:"created_by"`
	UpdatedBy int64     `json:"updated_by"`
}

func (a *Audit) StampCreate(at time.Time, actor int64) {
	a.CreatedAt = at
	a.UpdatedAt = at
	a.CreatedBy = actor
	a.UpdatedBy = actor
}

func (a *Audit) StampUpdate(at time.Time, actor int64) {
	a.UpdatedAt = at
	a.UpdatedBy = actor
}
