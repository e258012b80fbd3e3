package ledger

import (
	"context"
	"errors"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/cache"
	db "github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/database/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// cachedMaster loads a master row through the cache.
// A missing row resolves to nil, matching a LEFT JOIN.
func cachedMaster[T any](ctx context.Context, s *Service, kind string, id uuid.NullUUID, load func(context.Context, uuid.UUID) (T, error)) (*T, error) {
	if !id.Valid {
		return nil, nil
	}
	key := "master:" + kind + ":" + id.UUID.String()

	if s.cache != nil {
		v, ok, err := cache.GetJSON[T](ctx, s.cache, key)
		if err != nil {
			s.logger.DebugContext(ctx, "master cache read failed", "key", key, "error", err)
		}
		if ok {
			return &v, nil
		}
	}

	v, err := load(ctx, id.UUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("load_"+kind, err)
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, v, s.cacheTTL); err != nil {
			s.logger.DebugContext(ctx, "master cache write failed", "key", key, "error", err)
		}
	}
	return &v, nil
}

func (s *Service) item(ctx context.Context, id uuid.UUID) (*db.Item, error) {
	return cachedMaster(ctx, s, "item", valid(id), s.store.GetItem)
}

func (s *Service) warehouse(ctx context.Context, id uuid.NullUUID) (*db.Warehouse, error) {
	return cachedMaster(ctx, s, "warehouse", id, s.store.GetWarehouse)
}

func (s *Service) project(ctx context.Context, id uuid.NullUUID) (*db.Project, error) {
	return cachedMaster(ctx, s, "project", id, s.store.GetProject)
}

func (s *Service) bom(ctx context.Context, id uuid.NullUUID) (*db.Bom, error) {
	return cachedMaster(ctx, s, "bom", id, s.store.GetBom)
}

func (s *Service) spec(ctx context.Context, id uuid.NullUUID) (*db.BomSpec, error) {
	return cachedMaster(ctx, s, "spec", id, s.store.GetBomSpec)
}

func valid(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
