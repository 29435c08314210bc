package service

import (
	"context"

	"github.com/cardkey/cardkey/internal/model"
)

// RecordStore is what the generator and verifier need from persistence: a
// full read and a full rewrite of the key collection. config.Store
// implements it.
type RecordStore interface {
	Load(ctx context.Context) ([]model.KeyRecord, error)
	Save(ctx context.Context, records []model.KeyRecord) error
}
