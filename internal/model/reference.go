package model

// Bucket is the context a reference was looked up in
type Bucket string

const (
	BucketMainstream  Bucket = "mainstream"
	BucketAcademic    Bucket = "academic"
	BucketAlternative Bucket = "alternative"
)

// Buckets lists every bucket in triangulation order
var Buckets = []Bucket{BucketMainstream, BucketAcademic, BucketAlternative}

// Valid reports whether b is one of the three known buckets
func (b Bucket) Valid() bool {
	switch b {
	case BucketMainstream, BucketAcademic, BucketAlternative:
		return true
	}
	return false
}

// Relevance tags how closely a reference matches the claim subjects
type Relevance string

const (
	RelevanceHigh     Relevance = "high"
	RelevanceMedium   Relevance = "medium"
	RelevanceLow      Relevance = "low"
	RelevanceGuidance Relevance = "guidance" // Static fallback entry
)

// Reference is one triangulated source for a claim (or for the report root)
type Reference struct {
	Bucket    Bucket        `json:"bucket"`
	Title     string        `json:"title"`
	Summary   string        `json:"summary"`
	SourceID  string        `json:"source_id"`        // URL, DOI link or search link
	Source    string        `json:"source,omitempty"` // Publisher / backend name
	Relevance Relevance     `json:"relevance"`
	Authority AuthorityTier `json:"authority,omitempty"` // Tier of the SourceID host
	Query     string        `json:"query,omitempty"`     // Query that produced it
	Fallback  bool          `json:"fallback"`            // Static guidance substituted for a failed lookup
	Reason    string        `json:"reason,omitempty"`    // Why a fallback was used (timeout, error, empty)
	Reachable *bool         `json:"reachable,omitempty"` // Set by the link check; nil when unchecked or inconclusive
}

// Corroborates reports whether the reference is a live hit that can count as
// independent support: not guidance, and not a link known to be dead
func (r Reference) Corroborates() bool {
	return !r.Fallback && r.Relevance != RelevanceGuidance && (r.Reachable == nil || *r.Reachable)
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Scholarly records, official documents
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, forums, search pages
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}
