package config

import "time"

type (
	logSection      struct{}
	databaseSection struct{}
	serverSection   struct{}
	harvestSection  struct{}
	rankingSection  struct{}
	githubSection   struct{}
)

var (
	Log      logSection
	Database databaseSection
	Server   serverSection
	Harvest  harvestSection
	Ranking  rankingSection
	GitHub   githubSection
)

// Level is the minimum zap level name.
func (logSection) Level() string { return get().GetString("log.level") }

// Dsn is the PostgreSQL connection string of the shared store.
func (databaseSection) Dsn() string { return get().GetString("database.dsn") }

func (serverSection) Enabled() bool { return get().GetBool("server.enabled") }
func (serverSection) Port() int64 { return get().GetInt64("server.port") }

func (serverSection) CorsAllowedOrigins() []string {
	return get().GetStringSlice("server.cors_allowed_origins")
}

// Concurrency is the configured worker count; 0 means one per CPU.
func (harvestSection) Concurrency() int64 { return get().GetInt64("harvest.concurrency") }

// MirrorDir is the root under which mirrors live as <owner>/<project>.
func (harvestSection) MirrorDir() string { return get().GetString("harvest.mirror_dir") }

// Host is the git hosting site mirrors are cloned from.
func (harvestSection) Host() string { return get().GetString("harvest.host") }

func (harvestSection) CloneTimeout() time.Duration {
	return get().GetDuration("harvest.clone_timeout")
}

func (harvestSection) SummarizeTimeout() time.Duration {
	return get().GetDuration("harvest.summarize_timeout")
}

func (rankingSection) BaseURL() string { return get().GetString("ranking.base_url") }
func (rankingSection) Concurrency() int64 { return get().GetInt64("ranking.concurrency") }
func (rankingSection) RequestsPerSecond() float64 { return get().GetFloat64("ranking.requests_per_second") }
func (rankingSection) Timeout() time.Duration { return get().GetDuration("ranking.timeout") }

// Token authenticates hosting API calls; empty means anonymous.
func (githubSection) Token() string { return get().GetString("github.token") }

// APIURL overrides the REST base URL, e.g. for GitHub Enterprise.
func (githubSection) APIURL() string { return get().GetString("github.api_url") }
func (githubSection) Concurrency() int64 { return get().GetInt64("github.concurrency") }
