// Package dictionary provides the core types and temporal algebra for
// versioned reference-data lists.
//
// A dictionary is a classification code list whose entries (positions) carry
// attributes that change value over time. For every (position, attribute)
// pair the package models a gapless, non-overlapping timeline of value
// periods, and derives parent/child links between positions by matching
// CODE / PARENT_CODE values across overlapping validity windows.
//
// Key types:
//   - Interval: day-granular closed validity window with overlap and
//     intersection algebra
//   - Timeline: the value object owning one period set; its Edit method is
//     the only mutation entry point and returns a ChangeSet for the store
//   - Relation / MatchRelations: derived hierarchy links
//   - PositionSnapshot: the point-in-time view answered by the query engine
//
// Storage-backed implementations of the operations live in their engine
// subpackages, e.g. postgresengine.
//
// Common usage pattern:
//
//	tl := dictionary.NewTimeline(periods)
//	window, _ := dictionary.NewInterval(start, finish)
//	changes := tl.Edit(window, dictionary.NormalizeValue(raw))
//	// persist changes.DeleteIDs, changes.Updates, changes.Inserts
package dictionary
