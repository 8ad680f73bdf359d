package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/paygate"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/pkg/db"
	"github.com/Skotchmaster/restaurant_pos/pkg/events"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &repo.GormRepo{DB: gdb}
}

func seedMenuItem(t *testing.T, r *repo.GormRepo, name string, price, stock int64, available bool) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		Name:        name,
		Description: name,
		Price:       price,
		Category:    domain.CategoryFood,
		Stock:       stock,
		IsAvailable: true,
	}
	require.NoError(t, r.CreateMenuItem(context.Background(), item))
	if !available {
		item.IsAvailable = false
		require.NoError(t, r.UpdateMenuItem(context.Background(), item, false))
	}
	return item
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []paygate.TransactionRequest
	err      error
	// onCreate runs before the transaction is recorded.
	onCreate func(tr paygate.TransactionRequest)
}

func (g *fakeGateway) CreateTransaction(_ context.Context, tr paygate.TransactionRequest) (*paygate.TransactionResponse, error) {
	if g.onCreate != nil {
		g.onCreate(tr)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, tr)
	if g.err != nil {
		return nil, g.err
	}
	return &paygate.TransactionResponse{Token: "snap-token", RedirectURL: "https://pay.example/snap-token"}, nil
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
