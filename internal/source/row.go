// Package source retrieves and parses the raw historical data files.
//
// Files are unified per-appearance CSVs (one row per player per game with
// both batting- and pitching-prefixed columns). Retrieval prefers a
// pre-placed local file and falls back to a rate-limited HTTP fetch.
package source

// RawRow is one parsed source row: column name -> string, exactly as read.
// No interpretation is applied at this layer.
type RawRow map[string]string

// Get returns the named column, or empty string when absent. Expected-but-
// missing columns never fail at row granularity.
func (r RawRow) Get(col string) string {
	return r[col]
}
