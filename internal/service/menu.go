package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

// MenuIndex mirrors menu items into a full-text index.
type MenuIndex interface {
	Put(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.MenuItem, error)
}

type MenuService struct {
	Repo  *repo.GormRepo
	Index MenuIndex
}

func (s *MenuService) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	return s.Repo.GetMenuItem(ctx, id)
}

func (s *MenuService) ListMenuItems(ctx context.Context, f repo.MenuFilter, offset, limit int) (int64, []models.MenuItem, error) {
	if f.Category != "" {
		if _, ok := domain.ParseCategory(f.Category); !ok {
			return 0, nil, domain.Reject(domain.ErrValidation, "Invalid category")
		}
	}
	return s.Repo.ListMenuItems(ctx, f, offset, limit)
}

// Search queries the full-text index and falls back to SQL matching when
// the index is not configured or fails.
func (s *MenuService) Search(ctx context.Context, query string, offset, limit int) (int64, []models.MenuItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, domain.Reject(domain.ErrValidation, "Search query is required")
	}
	if s.Index != nil {
		total, hits, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			items, err := s.hydrate(ctx, hits)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("menu_search_error", "reason", "index unavailable, using database", "error", err)
	}
	return s.Repo.SearchMenuItems(ctx, query, offset, limit)
}

// hydrate replaces index hits with the stored rows, keeping the index
// ranking. Stock is not reindexed on every sale, so the index copy is only
// good for matching. Hits whose row is gone are dropped.
func (s *MenuService) hydrate(ctx context.Context, hits []models.MenuItem) ([]models.MenuItem, error) {
	ids := make([]uuid.UUID, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	rows, err := s.Repo.GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	items := make([]models.MenuItem, 0, len(hits))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			items = append(items, it)
		}
	}
	return items, nil
}

func (s *MenuService) CreateMenuItem(ctx context.Context, req transport.MenuItemRequest) (*models.MenuItem, error) {
	if req.Name == nil || req.Price == nil || req.Category == nil {
		return nil, domain.Reject(domain.ErrValidation, "name, price and category are required")
	}
	item := &models.MenuItem{IsAvailable: true}
	if err := applyMenuFields(item, req); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	s.reindex(ctx, item)
	return item, nil
}

func (s *MenuService) UpdateMenuItem(ctx context.Context, id uuid.UUID, req transport.MenuItemRequest) (*models.MenuItem, error) {
	item, err := s.Repo.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyMenuFields(item, req); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateMenuItem(ctx, item, req.Stock != nil); err != nil {
		return nil, err
	}
	s.reindex(ctx, item)
	return item, nil
}

func (s *MenuService) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id.String()); err != nil {
			logging.FromContext(ctx).Warn("menu_index_error", "item_id", id, "error", err)
		}
	}
	return nil
}

// AdjustStock applies a manual restock or correction. The stock never goes
// below zero.
func (s *MenuService) AdjustStock(ctx context.Context, id uuid.UUID, delta int64) (*models.MenuItem, error) {
	if delta == 0 {
		return nil, domain.Reject(domain.ErrValidation, "delta must not be zero")
	}
	item, err := s.Repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, item)
	return item, nil
}

func (s *MenuService) reindex(ctx context.Context, item *models.MenuItem) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, item); err != nil {
		logging.FromContext(ctx).Warn("menu_index_error", "item_id", item.ID, "error", err)
	}
}

func applyMenuFields(item *models.MenuItem, req transport.MenuItemRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Reject(domain.ErrValidation, "name must not be empty")
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.Reject(domain.ErrValidation, "price cannot be negative")
		}
		item.Price = *req.Price
	}
	if req.Category != nil {
		cat, ok := domain.ParseCategory(*req.Category)
		if !ok {
			return domain.Reject(domain.ErrValidation, "Invalid category")
		}
		item.Category = cat
	}
	if req.Image != nil {
		item.Image = *req.Image
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.Reject(domain.ErrValidation, "stock cannot be negative")
		}
		item.Stock = *req.Stock
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	return nil
}
