package model

// Hook request bodies. Monetary fields arrive as decimal USD strings and are
// parsed into 1e6 fixed point at the handler boundary; the engine never sees
// floating point.

type TradeFillRequest struct {
	User            string `json:"user" binding:"required"`
	Counterparty    string `json:"counterparty" binding:"required"`
	Notional        string `json:"notional" binding:"required"`
	IsMaker         bool   `json:"is_maker"`
	MakerImproveBps int64  `json:"maker_improve_bps"`
}

type PnlRequest struct {
	User string `json:"user" binding:"required"`
	Gain string `json:"gain"`
	Loss string `json:"loss"`
}

type FundingRequest struct {
	User string `json:"user" binding:"required"`
	// Amount is signed; only its magnitude is accumulated.
	Amount string `json:"amount" binding:"required"`
}

type OptionFillRequest struct {
	Buyer   string `json:"buyer" binding:"required"`
	Maker   string `json:"maker" binding:"required"`
	Premium string `json:"premium" binding:"required"`
}

type BorrowRequest struct {
	User        string `json:"user" binding:"required"`
	Borrowed    string `json:"borrowed" binding:"required"`
	UtilBps     int64  `json:"util_bps"`
	EstInterest string `json:"est_interest"`
}

type RepayRequest struct {
	User         string `json:"user" binding:"required"`
	InterestPaid string `json:"interest_paid" binding:"required"`
}

type SupplyRequest struct {
	User          string `json:"user" binding:"required"`
	DeltaSupplied string `json:"delta_supplied" binding:"required"`
	UtilBps       int64  `json:"util_bps"`
	KinkBps       int64  `json:"kink_bps"`
}

type LiquidationRequest struct {
	User       string `json:"user" binding:"required"`
	DebtRepaid string `json:"debt_repaid" binding:"required"`
}

type BindReferralRequest struct {
	User   string `json:"user" binding:"required"`
	Parent string `json:"parent" binding:"required"`
}

type FaucetClaimRequest struct {
	User   string `json:"user" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Read-view responses.

type WeekPointsResponse struct {
	User   string `json:"user"`
	Week   int64  `json:"week"`
	Points int64  `json:"points"`
}

type TotalPointsResponse struct {
	User   string `json:"user"`
	Points int64  `json:"points"`
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	User   string `json:"user"`
	Points int64  `json:"points"`
}

type LeaderboardResponse struct {
	Week    int64              `json:"week"`
	Entries []LeaderboardEntry `json:"entries"`
}

type RankResponse struct {
	User   string `json:"user"`
	Week   int64  `json:"week"`
	Rank   int    `json:"rank"` // 1-based
	Points int64  `json:"points"`
}

type PercentileResponse struct {
	User          string `json:"user"`
	Week          int64  `json:"week"`
	PercentileBps int64  `json:"percentile_bps"`
}

type ReferralView struct {
	User   string `json:"user"`
	Parent string `json:"parent,omitempty"`
	Bound  bool   `json:"bound"`
}

// UserView is the synchronized public projection of a UserState.
type UserView struct {
	User               string `json:"user"`
	Day                int64  `json:"day"`
	Week               int64  `json:"week"`
	Tier               int    `json:"tier"`
	SevenDaySum        int64  `json:"seven_day_sum"`
	WeekPointsOwn      int64  `json:"week_points_own"`
	WeekReferralEarned int64  `json:"week_referral_earned"`
	WeekPointsTotal    int64  `json:"week_points_total"`
	AllTimePoints      int64  `json:"all_time_points"`
}

type FaucetClaimResponse struct {
	User        string `json:"user"`
	Minted      string `json:"minted"`
	MintedToday string `json:"minted_today"`
}
