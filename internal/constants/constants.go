package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	PipelineTimeout = 10 * time.Minute
	RequestTimeout  = 30 * time.Second
	ImageTimeout    = 10 * time.Second
)

const (
	DBMaxOpenConns    = 4
	DBMaxIdleConns    = 2
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	UpcomingMatchesPath = "/matches"
	ResultsMatchesPath  = "/matches/results"
)

const (
	// a stats row shorter than this is not a player line
	MinStatColumns = 14

	DefaultListLimit = 50
	MaxListLimit     = 200

	CardRenderWorkers = 4
)
