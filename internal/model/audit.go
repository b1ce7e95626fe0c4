package model

import (
	"time"
)

// Engine event types recorded in the append-only event log and pushed on the
// notification stream.
const (
	EventDayFinalized   = "day_finalized"
	EventTierChange     = "tier_change"
	EventReferralCredit = "referral_credit"
	EventReferralBound  = "referral_bound"
	EventFaucetClaim    = "faucet_claim"
	EventParamsUpdated  = "params_updated"
)

// EngineEvent 代表一次引擎状态变更的审计记录 (gorm 持久化)。
type EngineEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"` // 唯一事件 ID (UUID)
	Type      string    `json:"type" gorm:"size:32;index"`
	User      string    `json:"user" gorm:"size:42;index"`
	Day       int64     `json:"day"`
	Week      int64     `json:"week" gorm:"index"`
	Points    int64     `json:"points"`
	Detail    string    `json:"detail" gorm:"type:text"` // 业务上下文 (JSON string)
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the gorm table name stable across model renames.
func (EngineEvent) TableName() string { return "engine_events" }

// DayFinalizedEvent is pushed on the websocket stream when a user's day is
// scored and folded into the weekly aggregates.
type DayFinalizedEvent struct {
	User            string `json:"user"`
	Day             int64  `json:"day"`
	Week            int64  `json:"week"`
	DayPoints       int64  `json:"day_points"`
	WeekPointsTotal int64  `json:"week_points_total"`
	SevenDaySum     int64  `json:"seven_day_sum"`
}

// TierChangeEvent is pushed when a finalization moves a user across a tier
// threshold.
type TierChangeEvent struct {
	User    string `json:"user"`
	Day     int64  `json:"day"`
	OldTier int    `json:"old_tier"`
	NewTier int    `json:"new_tier"`
}
