package repository

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/unxversal/pointgate/internal/model"
)

// MirrorSet fans committed engine state out to whichever mirrors are
// configured. Every field is optional; a nil mirror is skipped. It satisfies
// the engine's Mirror interface.
type MirrorSet struct {
	PG     *PostgresPointsRepo
	Redis  *RedisClient
	Events *EventRepo
}

func (m *MirrorSet) SaveWeekPoints(ctx context.Context, week int64, user common.Address, total int64) error {
	var firstErr error
	if m.PG != nil {
		if err := m.PG.SaveWeekPoints(ctx, week, user, total); err != nil {
			firstErr = err
		}
	}
	if m.Redis != nil {
		if err := m.Redis.SaveWeekPoints(ctx, week, user, total); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoadWeekPoints serves snapshot reads for weeks the engine no longer holds
// in memory: the Redis read replica first, then the Postgres snapshot (Redis
// hashes expire after 9 weeks, Postgres keeps the full retention window).
func (m *MirrorSet) LoadWeekPoints(ctx context.Context, week int64, user common.Address) (int64, error) {
	if m.Redis != nil {
		if points, found, err := m.Redis.GetWeekPoints(ctx, week, user); err == nil && found {
			return points, nil
		}
	}
	if m.PG != nil {
		return m.PG.GetWeekPoints(ctx, week, user)
	}
	return 0, nil
}

func (m *MirrorSet) SaveUserState(ctx context.Context, u *model.UserState) error {
	if m.PG == nil {
		return nil
	}
	return m.PG.SaveUserState(ctx, u)
}

func (m *MirrorSet) SaveReferral(ctx context.Context, child, parent common.Address) error {
	if m.PG == nil {
		return nil
	}
	return m.PG.SaveReferral(ctx, child, parent)
}

func (m *MirrorSet) AppendEvent(ctx context.Context, ev model.EngineEvent) error {
	if m.Events == nil {
		return nil
	}
	return m.Events.AppendEvent(ctx, ev)
}

// Empty reports whether no mirror is configured at all, letting the caller
// hand the engine a nil Mirror instead.
func (m *MirrorSet) Empty() bool {
	return m.PG == nil && m.Redis == nil && m.Events == nil
}
