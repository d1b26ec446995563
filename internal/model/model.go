// Package model defines the normalized entities produced by ingestion and
// consumed by scoring: teams, players, games, and the closed batting/pitching
// stat variant.
package model

import "time"

// Domain discriminates the two stat record variants.
type Domain string

const (
	DomainBatting  Domain = "batting"
	DomainPitching Domain = "pitching"
)

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	return d == DomainBatting || d == DomainPitching
}

// Domains lists all stat domains in canonical order.
var Domains = []Domain{DomainBatting, DomainPitching}

// Team is a minimal identity record, created lazily on first reference.
type Team struct {
	ID string
}

// Player is a minimal identity record, created lazily on first reference.
type Player struct {
	ID string
}

// Game is one game, derived from the first row referencing its key.
// Identity fields are immutable after creation; HasBox and HasPBP are
// OR-merged across every row that asserts them, so they only ever move
// false -> true.
type Game struct {
	ID         string
	Date       time.Time
	GameNumber int
	Site       string
	HomeTeam   string
	AwayTeam   string
	GameType   string
	HasBox     bool
	HasPBP     bool
}

// StatKey uniquely identifies a stat record.
type StatKey struct {
	GameID   string
	PlayerID string
	Domain   Domain
}

// StatRecord is the closed tagged variant over BattingGameStat and
// PitchingGameStat. Stat resolves a named stat to its numeric value;
// ok=false means the stat is unknown to the domain or null on this record.
// Boolean stats coerce to 1/0.
type StatRecord interface {
	Domain() Domain
	Key() StatKey
	Stat(name string) (value float64, ok bool)
}
