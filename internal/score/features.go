// Package score turns claims and the intent profile into the objectivity,
// factual reliability and PR probability scores plus a risk label.
//
// Every score is a named pure function of a Features vector and the
// configured weights; changing a weight is a config change, not a code change.
package score

import (
	"github.com/ppiankov/newsintel/internal/model"
)

// Features is everything the scores depend on
type Features struct {
	Claims           int
	FlagCount        int
	OpinionRatio     float64 // opinion claims / claims
	Intent           model.Intent
	IntentConfidence int     // dominant intent confidence, 0 when neutral
	AvgVerifiability float64 // mean claim verifiability
	Corroboration    float64 // claims with a relevant live mainstream/academic hit / claims
	Unsupported      bool    // unsupported_assertions flag fired
	PRIntent         int     // max(pr, political) confidence
	OneSided         bool
	HeroVillain      bool
	Diversity        float64 // spread of live references over buckets and authority tiers, [0,1]
	Lookups          int     // claim × bucket reference slots
	Fallbacks        int     // slots served by guidance
}

// Extract builds the feature vector
func Extract(claims []model.Claim, profile model.IntentProfile) Features {
	f := Features{
		Claims:      len(claims),
		FlagCount:   len(profile.Flags),
		Intent:      profile.Dominant,
		Unsupported: profile.HasFlag(model.PatternUnsupportedAssertions),
		OneSided:    profile.HasFlag(model.PatternOneSidedFraming),
		HeroVillain: profile.HasFlag(model.PatternHeroVillainFraming),
		PRIntent:    max(profile.Scores[model.IntentPR], profile.Scores[model.IntentPolitical]),
	}
	if profile.Dominant != model.IntentNeutral {
		f.IntentConfidence = profile.Confidence
	}
	if len(claims) == 0 {
		return f
	}

	opinions, corroborated, verifiability := 0, 0, 0
	buckets := make(map[model.Bucket]bool)
	tiers := make(map[model.AuthorityTier]bool)
	for _, c := range claims {
		verifiability += c.Verifiability
		if c.Type == model.ClaimTypeOpinion {
			opinions++
		}

		seen := make(map[model.Bucket]bool)
		supported := false
		for _, r := range c.References {
			if !seen[r.Bucket] {
				seen[r.Bucket] = true
				f.Lookups++
				if r.Fallback {
					f.Fallbacks++
				}
			}
			if !r.Corroborates() {
				continue
			}
			buckets[r.Bucket] = true
			tiers[r.Authority] = true
			if r.Bucket != model.BucketAlternative && r.Relevance != model.RelevanceLow {
				supported = true
			}
		}
		if supported {
			corroborated++
		}
	}

	n := float64(len(claims))
	f.OpinionRatio = float64(opinions) / n
	f.AvgVerifiability = float64(verifiability) / n
	f.Corroboration = float64(corroborated) / n
	delete(tiers, model.TierUnknown)
	f.Diversity = 0.5*float64(len(buckets))/float64(len(model.Buckets)) + 0.5*float64(len(tiers))/3
	return f
}
