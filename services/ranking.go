package services

// Rating formula and rank tiers. Pure arithmetic on ranking points — the
// only caller that mutates stored points is settlement.

// RatingDelta computes the points change for one side of a finished ranked
// match. Winners gain 25 ± up to 10 depending on the rating gap (more for
// upsets, floor +5); losers drop 20 ∓ up to 10 (capped at -30).
func RatingDelta(isWinner bool, playerRP, opponentRP int) int {
	rankDiff := opponentRP - playerRP

	adj := rankDiff / 100
	if adj > 10 {
		adj = 10
	}
	if adj < -10 {
		adj = -10
	}

	if isWinner {
		points := 25 + adj
		if points < 5 {
			points = 5
		}
		return points
	}

	points := -20 + adj
	if points < -30 {
		points = -30
	}
	return points
}

// ClampRating keeps stored ranking points at a non-negative floor.
func ClampRating(points int) int {
	if points < 0 {
		return 0
	}
	return points
}

// RankTier is one band of the ladder.
type RankTier struct {
	Name  string `json:"name"`
	MinRP int    `json:"minRP"`
	MaxRP int    `json:"maxRP"` // exclusive; <0 means unbounded
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var rankTiers = []RankTier{
	{Name: "Bronze", MinRP: 0, MaxRP: 1000, Icon: "🥉", Color: "#CD7F32"},
	{Name: "Silver", MinRP: 1000, MaxRP: 2000, Icon: "🥈", Color: "#C0C0C0"},
	{Name: "Gold", MinRP: 2000, MaxRP: 3000, Icon: "🥇", Color: "#FFD700"},
	{Name: "Diamond", MinRP: 3000, MaxRP: 4000, Icon: "💎", Color: "#B9F2FF"},
	{Name: "Platinum", MinRP: 4000, MaxRP: -1, Icon: "👑", Color: "#E5E4E2"},
}

// RankInfo is the client-facing view of a player's position on the ladder.
type RankInfo struct {
	Rank           string `json:"rank"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	CurrentRP      int    `json:"currentRP"`
	MinRP          int    `json:"minRP"`
	MaxRP          int    `json:"maxRP"`
	ProgressToNext int    `json:"progressToNext"` // percent within current tier
	NextRank       string `json:"nextRank,omitempty"`
	RPToNext       int    `json:"rpToNext"`
}

// GetRankInfo maps ranking points onto the tier ladder.
func GetRankInfo(rankingPoints int) RankInfo {
	rp := ClampRating(rankingPoints)

	tierIdx := 0
	for i, tier := range rankTiers {
		if rp >= tier.MinRP && (tier.MaxRP < 0 || rp < tier.MaxRP) {
			tierIdx = i
			break
		}
	}
	tier := rankTiers[tierIdx]

	info := RankInfo{
		Rank:      tier.Name,
		Icon:      tier.Icon,
		Color:     tier.Color,
		CurrentRP: rp,
		MinRP:     tier.MinRP,
		MaxRP:     tier.MaxRP,
	}

	if tier.MaxRP < 0 {
		// Top tier: no next rank, progress pinned at 100.
		info.MaxRP = tier.MinRP
		info.ProgressToNext = 100
		return info
	}

	info.ProgressToNext = (rp - tier.MinRP) * 100 / (tier.MaxRP - tier.MinRP)
	next := rankTiers[tierIdx+1]
	info.NextRank = next.Name
	info.RPToNext = next.MinRP - rp
	return info
}
