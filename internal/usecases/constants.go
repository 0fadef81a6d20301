package usecases

import (
	"time"

	"astraldraw.backend/internal/domain/entities"
	"astraldraw.backend/pkg/redis"
)

// Draw economics
const (
	// DrawEntryFee is the ASTRA cost of forging one set of star keys
	DrawEntryFee int64 = 100
	// PrizeFraction is the share of the prize pool paid to the winner
	PrizeFraction = 0.7
	// AstraPerFiatUnit converts top-up money to ASTRA (two decimals)
	AstraPerFiatUnit int64 = 100
)

// Proposal validation bounds
const (
	ProposalTitleMin       = 5
	ProposalTitleMax       = 200
	ProposalDescriptionMin = 10
	ProposalDescriptionMax = 2000
)

// Rate limit action names, shared between usecases and middleware
const (
	ActionCreateProposal = "create_proposal"
	ActionCastVote       = "cast_vote"
	ActionPurchaseNFT    = "purchase_nft"
)

// RateLimitRules are the per-action limits applied to governance writes
var RateLimitRules = map[string]redis.Rule{
	ActionCreateProposal: {Limit: 3, Window: time.Hour},
	ActionCastVote:       {Limit: 10, Window: 5 * time.Minute},
	ActionPurchaseNFT:    {Limit: 5, Window: time.Hour},
}

// GovernanceTiers fixes the tier catalogue. Token IDs come from config
// at startup; everything else is immutable.
var GovernanceTiers = map[string]entities.TierConfig{
	entities.TierCelestial: {
		Name:        entities.TierCelestial,
		Price:       10000,
		VotingPower: 10,
		MaxSupply:   10,
	},
	entities.TierStellar: {
		Name:        entities.TierStellar,
		Price:       1000,
		VotingPower: 2,
		MaxSupply:   1000,
	},
	entities.TierCosmic: {
		Name:        entities.TierCosmic,
		Price:       100,
		VotingPower: 1,
		MaxSupply:   10000,
	},
}

// Login throttle
const (
	LoginMaxFailures   = 5
	LoginFailureWindow = 15 * time.Minute
)

// Pagination defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampPageSize normalizes a requested page size
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
