package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"

	"github.com/unxversal/pointgate/internal/model"
)

type PostgresPointsRepo struct {
	db *sqlx.DB
}

func NewPostgresPointsRepo(db *sqlx.DB) *PostgresPointsRepo {
	repo := &PostgresPointsRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// SaveWeekPoints 原子 upsert 每 (周, 用户) 的积分快照
func (r *PostgresPointsRepo) SaveWeekPoints(ctx context.Context, week int64, user common.Address, total int64) error {
	query := `
		INSERT INTO week_user_points (week, "user", points, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (week, "user")
		DO UPDATE SET points = $3, updated_at = $4
	`
	_, err := r.db.ExecContext(ctx, query, week, user.Hex(), total, time.Now().UTC())
	return err
}

// GetWeekPoints 读取快照，缺失视为 0；其它错误原样上抛
func (r *PostgresPointsRepo) GetWeekPoints(ctx context.Context, week int64, user common.Address) (int64, error) {
	var points int64
	query := `SELECT points FROM week_user_points WHERE week = $1 AND "user" = $2`
	if err := r.db.QueryRowxContext(ctx, query, week, user.Hex()).Scan(&points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return points, nil
}

// SaveUserState mirrors a full user record as JSON keyed by address, for
// durable snapshots and warm restarts. The in-memory store stays
// authoritative; this is write-behind only.
func (r *PostgresPointsRepo) SaveUserState(ctx context.Context, u *model.UserState) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO user_states (address, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (address)
		DO UPDATE SET state = $2, updated_at = $3
	`
	_, err = r.db.ExecContext(ctx, query, u.Address.Hex(), raw, time.Now().UTC())
	return err
}

// LoadUserStates streams every mirrored record into fn, used to rebuild the
// in-memory store on startup.
func (r *PostgresPointsRepo) LoadUserStates(ctx context.Context, fn func(*model.UserState)) error {
	rows, err := r.db.QueryxContext(ctx, `SELECT state FROM user_states`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return err
		}
		var u model.UserState
		if err := json.Unmarshal(raw, &u); err != nil {
			continue
		}
		fn(&u)
	}
	return rows.Err()
}

// SaveReferral mirrors the immutable child -> parent edge.
func (r *PostgresPointsRepo) SaveReferral(ctx context.Context, child, parent common.Address) error {
	query := `
		INSERT INTO referral_edges (child, parent, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (child) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, child.Hex(), parent.Hex(), time.Now().UTC())
	return err
}

// LoadReferrals streams every mirrored edge into fn on startup.
func (r *PostgresPointsRepo) LoadReferrals(ctx context.Context, fn func(child, parent common.Address)) error {
	rows, err := r.db.QueryxContext(ctx, `SELECT child, parent FROM referral_edges`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var child, parent string
		if err := rows.Scan(&child, &parent); err != nil {
			return err
		}
		if !common.IsHexAddress(child) || !common.IsHexAddress(parent) {
			continue
		}
		fn(common.HexToAddress(child), common.HexToAddress(parent))
	}
	return rows.Err()
}

func (r *PostgresPointsRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS week_user_points (
			week BIGINT NOT NULL,
			"user" TEXT NOT NULL,
			points BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (week, "user")
		)
	`)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_states (
			address TEXT PRIMARY KEY,
			state JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS referral_edges (
			child TEXT PRIMARY KEY,
			parent TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

// Cleanup drops week snapshots older than the retention window.
func (r *PostgresPointsRepo) Cleanup(ctx context.Context, olderThanWeeks int64, currentWeek int64) error {
	if olderThanWeeks <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM week_user_points WHERE week < $1`, currentWeek-olderThanWeeks)
	return err
}
