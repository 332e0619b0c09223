package models

// RowStatus is the outcome recorded for one accepted listing record
type RowStatus string

const (
	RowStatusUnset  RowStatus = ""       // Zero value = unset/unknown
	RowStatusLinked RowStatus = "linked" // Category confirmed and a file URL resolved
	RowStatusNoPDF  RowStatus = "no_pdf" // Category confirmed, no file link found
	RowStatusError  RowStatus = "error"  // Processing the record failed
)

// String implements fmt.Stringer for logging
func (s RowStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status may appear in the manifest
func (s RowStatus) IsValid() bool {
	switch s {
	case RowStatusLinked, RowStatusNoPDF, RowStatusError:
		return true
	}
	return false
}

// SectionStatus is the outcome of extracting sections for one project identifier
type SectionStatus string

const (
	SectionStatusUnset     SectionStatus = ""           // Zero value = unset/unknown
	SectionStatusOK        SectionStatus = "ok"         // At least one section found
	SectionStatusNoContent SectionStatus = "no_content" // Page fetched, no target section found
	SectionStatusNotFound  SectionStatus = "not_found"  // No candidate URL could be fetched
)

// String implements fmt.Stringer for logging
func (s SectionStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status may appear in the sections output
func (s SectionStatus) IsValid() bool {
	switch s {
	case SectionStatusOK, SectionStatusNoContent, SectionStatusNotFound:
		return true
	}
	return false
}

// VisitStatus is the dedup-store state of a detail URL
type VisitStatus string

const (
	VisitStatusNotFound VisitStatus = "not_found" // URL not in the store
	VisitStatusPending  VisitStatus = "pending"   // Claimed, processing not finished
	VisitStatusAccepted VisitStatus = "accepted"  // Produced a manifest row
	VisitStatusRejected VisitStatus = "rejected"  // Category did not match, no row
	VisitStatusFailed   VisitStatus = "failed"    // Produced an error row
	VisitStatusDBError  VisitStatus = "db_error"  // Store lookup failed
)

// String implements fmt.Stringer for logging
func (s VisitStatus) String() string {
	return string(s)
}
