package crawler

// SeedState is a step of the per-seed crawl loop
type SeedState int

const (
	StateFetchingPage SeedState = iota
	StateExtracting
	StateProcessingRecords
	StatePaginating
	StateDone
)

func (s SeedState) String() string {
	switch s {
	case StateFetchingPage:
		return "FETCHING_PAGE"
	case StateExtracting:
		return "EXTRACTING"
	case StateProcessingRecords:
		return "PROCESSING_RECORDS"
	case StatePaginating:
		return "PAGINATING"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Reasons a seed stops
const (
	StopFetchFailed = "page fetch failed"
	StopNoRecords   = "no records on page"
	StopNoNextPage  = "no next page"
	StopPageCeiling = "page ceiling reached"
	StopInterrupted = "interrupted"
)
