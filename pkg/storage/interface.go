package storage

import "github.com/Sriram-PR/doc-harvester/pkg/models"

// VisitedStore is the run-wide dedup set of detail URLs.
// Keys are used verbatim; callers normalize before calling.
type VisitedStore interface {
	// MarkVisited claims a detail URL in pending state.
	// Returns true if the URL was newly added, false if it was already present.
	MarkVisited(detailURL string) (bool, error)

	// CheckStatus returns the stored state of a detail URL and its entry when one was recorded
	CheckStatus(detailURL string) (models.VisitStatus, *models.VisitEntry, error)

	// UpdateStatus records the outcome of processing a detail URL
	UpdateStatus(detailURL string, entry *models.VisitEntry) error

	// Count returns the number of distinct detail URLs seen this run
	Count() int

	// CountByStatus tallies stored outcomes; pending entries count under VisitStatusPending
	CountByStatus() (map[models.VisitStatus]int, error)

	// Close releases the store
	Close() error
}
