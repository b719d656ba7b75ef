package services

import (
	"github.com/N3z3d/FortniteProject-sub000/models"
)

// CompositionValidator checks a roster against per-region capacity rules.
// It is stateless and safe for concurrent use.
type CompositionValidator struct{}

func NewCompositionValidator() *CompositionValidator {
	return &CompositionValidator{}
}

// Validate returns nil when team satisfies every rule. Only open memberships
// are counted. A malformed rule fails immediately with ErrInvalidRegionRule.
func (v *CompositionValidator) Validate(team *models.Team, rules []models.RegionRule) error {
	const op = "CompositionValidator.Validate"
	if len(rules) == 0 {
		return nil
	}
	for _, rule := range rules {
		if rule.Region == "" || rule.MaxPlayers <= 0 {
			return newTradeError(KindInvalidRequest, op, ErrInvalidRegionRule,
				"region %q with max players %d", rule.Region, rule.MaxPlayers)
		}
	}

	counts := regionCounts(team)
	for _, rule := range rules {
		if n := counts[rule.Region]; n > rule.MaxPlayers {
			return newTradeError(KindLimitExceeded, op, ErrRegionLimitExceeded,
				"team %q would hold %d %s players, limit is %d", team.Name, n, rule.Region, rule.MaxPlayers)
		}
	}
	return nil
}

func regionCounts(team *models.Team) map[models.Region]int {
	counts := make(map[models.Region]int)
	for _, tp := range team.ActivePlayers() {
		if tp.Player == nil {
			continue
		}
		counts[tp.Player.Region]++
	}
	return counts
}
