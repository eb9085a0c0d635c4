package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Lookup       LookupConfig       `yaml:"lookup" mapstructure:"lookup"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	Intent       IntentConfig       `yaml:"intent" mapstructure:"intent"`
	Extract      ExtractConfig      `yaml:"extract" mapstructure:"extract"`
	LexiconFile  string             `yaml:"lexicon_file" mapstructure:"lexicon_file"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
}

// HTTPConfig configures outbound HTTP (article fetches and live lookups)
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LookupConfig configures the Reference Lookup backends
type LookupConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per bucket, per claim
	MaxResults      int           `yaml:"max_results" mapstructure:"max_results"`
	MaxAttempts     int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	WikipediaURL    string        `yaml:"wikipedia_url" mapstructure:"wikipedia_url"`
	CrossrefURL     string        `yaml:"crossref_url" mapstructure:"crossref_url"`
	FeedURLTemplate string        `yaml:"feed_url_template" mapstructure:"feed_url_template"` // %s is the escaped query
	CheckLinks      bool          `yaml:"check_links" mapstructure:"check_links"`             // HEAD-check live reference links
}

// CacheConfig configures the lookup result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	LookupWorkers int `yaml:"lookup_workers" mapstructure:"lookup_workers"` // claim x bucket fan-out
	BatchWorkers  int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// RateLimitingConfig throttles outbound requests per host
type RateLimitingConfig struct {
	RequestsPerSecond float64     `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int         `yaml:"burst_size" mapstructure:"burst_size"`
	Hosts             []HostLimit `yaml:"hosts" mapstructure:"hosts"`
}

// HostLimit overrides the rate for a single host
type HostLimit struct {
	Host              string  `yaml:"host" mapstructure:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// AuthorityConfig drives source authority classification
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	PathPatterns     []PathPattern     `yaml:"path_patterns" mapstructure:"path_patterns"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// PathPattern maps a URL path regex to a tier name
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// ScoringConfig holds every weight and threshold used by the scorer
type ScoringConfig struct {
	// Specificity weights per cue
	NumberWeight      float64 `yaml:"number_weight" mapstructure:"number_weight"`
	PercentWeight     float64 `yaml:"percent_weight" mapstructure:"percent_weight"`
	DateWeight        float64 `yaml:"date_weight" mapstructure:"date_weight"`
	EntityWeight      float64 `yaml:"entity_weight" mapstructure:"entity_weight"`
	NamedSourceWeight float64 `yaml:"named_source_weight" mapstructure:"named_source_weight"`

	// Verifiability
	VerifiabilityBase        float64 `yaml:"verifiability_base" mapstructure:"verifiability_base"`
	AttributionWeight        float64 `yaml:"attribution_weight" mapstructure:"attribution_weight"`
	SourceVerifiabilityBonus float64 `yaml:"source_verifiability_bonus" mapstructure:"source_verifiability_bonus"`
	NumberVerifiabilityBonus float64 `yaml:"number_verifiability_bonus" mapstructure:"number_verifiability_bonus"`
	HedgePenalty             float64 `yaml:"hedge_penalty" mapstructure:"hedge_penalty"`

	// Objectivity
	FlagPenalty         float64 `yaml:"flag_penalty" mapstructure:"flag_penalty"`
	OpinionRatioPenalty float64 `yaml:"opinion_ratio_penalty" mapstructure:"opinion_ratio_penalty"`
	IntentPenalty       float64 `yaml:"intent_penalty" mapstructure:"intent_penalty"`

	// Factual reliability
	VerifiabilityShare float64 `yaml:"verifiability_share" mapstructure:"verifiability_share"`
	CorroborationBonus float64 `yaml:"corroboration_bonus" mapstructure:"corroboration_bonus"`
	SupportedBonus     float64 `yaml:"supported_bonus" mapstructure:"supported_bonus"`

	// PR probability
	IntentShare        float64 `yaml:"intent_share" mapstructure:"intent_share"`
	OneSidedWeight     float64 `yaml:"one_sided_weight" mapstructure:"one_sided_weight"`
	HeroVillainWeight  float64 `yaml:"hero_villain_weight" mapstructure:"hero_villain_weight"`
	LowDiversityWeight float64 `yaml:"low_diversity_weight" mapstructure:"low_diversity_weight"`

	// Risk label thresholds
	CriticalPR          int `yaml:"critical_pr" mapstructure:"critical_pr"`
	CriticalReliability int `yaml:"critical_reliability" mapstructure:"critical_reliability"`
	HighPR              int `yaml:"high_pr" mapstructure:"high_pr"`
	HighReliability     int `yaml:"high_reliability" mapstructure:"high_reliability"`
}

// IntentConfig tunes the intent and manipulation detector
type IntentConfig struct {
	DensityScale  float64 `yaml:"density_scale" mapstructure:"density_scale"`   // Confidence points per cue per sentence
	FlagThreshold int     `yaml:"flag_threshold" mapstructure:"flag_threshold"` // Pattern fires once confidence exceeds this
}

// ExtractConfig tunes claim extraction
type ExtractConfig struct {
	MaxClaims        int     `yaml:"max_claims" mapstructure:"max_claims"`
	MinWords         int     `yaml:"min_words" mapstructure:"min_words"`
	OpinionThreshold float64 `yaml:"opinion_threshold" mapstructure:"opinion_threshold"` // Subjective words / words
}

// OutputConfig configures report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxInputBytes  int64         `yaml:"max_input_bytes" mapstructure:"max_input_bytes"`
}

// DefaultUserAgent identifies outbound requests
const DefaultUserAgent = "NewsIntel/0.1 (+https://github.com/ppiankov/newsintel)"

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       2 * time.Minute,
			UserAgent:     DefaultUserAgent,
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Lookup: LookupConfig{
			Enabled:         true,
			Timeout:         8 * time.Second,
			MaxResults:      4,
			MaxAttempts:     2,
			WikipediaURL:    "https://en.wikipedia.org/w/api.php",
			CrossrefURL:     "https://api.crossref.org/works",
			FeedURLTemplate: "https://news.google.com/rss/search?q=%s+analysis&hl=en-US&gl=US&ceid=US:en",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			LookupWorkers: 8,
			BatchWorkers:  4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
			Hosts: []HostLimit{
				{Host: "api.crossref.org", RequestsPerSecond: 2, BurstSize: 2},
			},
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"doi.org", "crossref.org", "pubmed.ncbi.nlm.nih.gov", "ncbi.nlm.nih.gov",
				"nature.com", "science.org", "who.int", "europa.eu", "un.org", "arxiv.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "reuters.com", "apnews.com", "bbc.co.uk", "bbc.com",
				"britannica.com", "nytimes.com", "theguardian.com", "npr.org",
			},
			PathPatterns: []PathPattern{
				{Pattern: `^/(doi|abs|pdf)/`, Tier: "primary"},
			},
		},
		Scoring: DefaultScoringConfig(),
		Intent: IntentConfig{
			DensityScale:  60,
			FlagThreshold: 25,
		},
		Extract: ExtractConfig{
			MaxClaims:        15,
			MinWords:         4,
			OpinionThreshold: 0.12,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 45 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxInputBytes:  1 << 20,
		},
	}
}

// DefaultScoringConfig returns the initial weight set
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		NumberWeight:      15,
		PercentWeight:     10,
		DateWeight:        20,
		EntityWeight:      15,
		NamedSourceWeight: 20,

		VerifiabilityBase:        35,
		AttributionWeight:        25,
		SourceVerifiabilityBonus: 10,
		NumberVerifiabilityBonus: 5,
		HedgePenalty:             20,

		FlagPenalty:         15,
		OpinionRatioPenalty: 30,
		IntentPenalty:       10,

		VerifiabilityShare: 0.6,
		CorroborationBonus: 25,
		SupportedBonus:     15,

		IntentShare:        0.5,
		OneSidedWeight:     15,
		HeroVillainWeight:  15,
		LowDiversityWeight: 20,

		CriticalPR:          75,
		CriticalReliability: 25,
		HighPR:              50,
		HighReliability:     45,
	}
}
