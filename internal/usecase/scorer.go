package usecase

import (
	"log"

	"github.com/dealradar/backend/internal/domain"
)

// Scoring adjustment defaults
const (
	defaultMinSimilarity    = 62.0
	defaultSponsoredPenalty = 3.0 // paid placements misrepresent relevance
	defaultShortTitleBonus  = 2.0 // short titles are rarely bundles/multipacks
	defaultShortTitleCutoff = 80  // characters of raw candidate title
)

// ScorePolicy unifies the identifier-first / title-first / hybrid
// matching variants behind one parameterized scorer.
type ScorePolicy struct {
	MinSimilarity    float64
	RequireBrand     bool
	SponsoredPenalty float64
	ShortTitleBonus  float64
	ShortTitleCutoff int
	SizeRatioMin     float64
}

// Scorer decides whether a candidate pair refers to the same product.
// Acceptance is about identity, not value; price comparison happens
// later in the deal engine.
type Scorer struct {
	policy ScorePolicy
	debug  bool
}

// NewScorer creates a scorer, filling zero policy fields with defaults.
// A negative penalty or bonus disables that adjustment, since the zero
// value means "use the default".
func NewScorer(policy ScorePolicy) *Scorer {
	if policy.MinSimilarity <= 0 {
		policy.MinSimilarity = defaultMinSimilarity
	}
	if policy.SponsoredPenalty == 0 {
		policy.SponsoredPenalty = defaultSponsoredPenalty
	} else if policy.SponsoredPenalty < 0 {
		policy.SponsoredPenalty = 0
	}
	if policy.ShortTitleBonus == 0 {
		policy.ShortTitleBonus = defaultShortTitleBonus
	} else if policy.ShortTitleBonus < 0 {
		policy.ShortTitleBonus = 0
	}
	if policy.ShortTitleCutoff <= 0 {
		policy.ShortTitleCutoff = defaultShortTitleCutoff
	}
	if policy.SizeRatioMin <= 0 {
		policy.SizeRatioMin = DefaultSizeRatioThreshold
	}
	return &Scorer{policy: policy}
}

// SetDebug enables per-candidate score logging.
func (s *Scorer) SetDebug(enabled bool) {
	s.debug = enabled
}

// Score evaluates one candidate against the primary listing's title and
// brand. Text similarity is the base signal; brand and size act as
// gates, and sponsored/short-title adjustments break near-ties.
func (s *Scorer) Score(primaryTitle, primaryBrand string, cand domain.Candidate) domain.MatchCandidate {
	mc := domain.MatchCandidate{Candidate: cand}

	mc.TextSimilarity = SimilarityRatio(NormalizeTitle(primaryTitle), NormalizeTitle(cand.Title))

	adjusted := mc.TextSimilarity
	if cand.Sponsored {
		adjusted -= s.policy.SponsoredPenalty
	}
	if len(cand.Title) > 0 && len(cand.Title) < s.policy.ShortTitleCutoff {
		adjusted += s.policy.ShortTitleBonus
	}
	mc.AdjustedScore = adjusted

	mc.BrandOK = true
	if s.policy.RequireBrand && primaryBrand != "" {
		mc.BrandOK = BrandMatches(primaryBrand, cand.Title)
	}

	mc.SizeOK = SizesCompatible(ExtractSize(primaryTitle), ExtractSize(cand.Title), s.policy.SizeRatioMin)

	mc.Accepted = adjusted >= s.policy.MinSimilarity && mc.BrandOK && mc.SizeOK

	if s.debug {
		log.Printf("[MATCH] candidate %q | sim=%.1f adj=%.1f brand=%v size=%v accepted=%v",
			cand.Title, mc.TextSimilarity, adjusted, mc.BrandOK, mc.SizeOK, mc.Accepted)
	}
	return mc
}

// BestMatch scores every priced candidate and returns the accepted one
// with the highest adjusted score, ties broken by shortest title.
// Candidates without a parseable price cannot participate in a deal and
// are excluded before scoring. Returns ErrNoMatch when nothing is
// accepted; callers record that as a cache miss, not a failure.
func (s *Scorer) BestMatch(primaryTitle, primaryBrand string, candidates []domain.Candidate) (*domain.MatchCandidate, error) {
	var best *domain.MatchCandidate
	for _, cand := range candidates {
		if cand.Price == nil || !cand.Price.IsPositive() {
			continue
		}
		mc := s.Score(primaryTitle, primaryBrand, cand)
		if !mc.Accepted {
			continue
		}
		if best == nil ||
			mc.AdjustedScore > best.AdjustedScore ||
			(mc.AdjustedScore == best.AdjustedScore && len(mc.Candidate.Title) < len(best.Candidate.Title)) {
			copied := mc
			best = &copied
		}
	}
	if best == nil {
		return nil, domain.ErrNoMatch
	}
	if s.debug {
		log.Printf("[MATCH] best match %q (score %.1f)", best.Candidate.Title, best.AdjustedScore)
	}
	return best, nil
}

// FirstPriced returns the first candidate carrying a positive price.
// Used for identifier-keyed lookups, where identifier equality is ground
// truth and text scoring is bypassed.
func FirstPriced(candidates []domain.Candidate) (*domain.Candidate, error) {
	for _, cand := range candidates {
		if cand.Price != nil && cand.Price.IsPositive() {
			copied := cand
			return &copied, nil
		}
	}
	return nil, domain.ErrNoMatch
}
