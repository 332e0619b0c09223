package models

import (
	"strconv"
	"time"
)

// ManifestHeader is the fixed column order of the harvest manifest
var ManifestHeader = []string{
	"source_seed", "page_num", "title", "date", "country", "sector",
	"detail_url", "pdf_url", "status", "notes",
}

// SectionsHeader is the fixed column order of the section extractor output
var SectionsHeader = []string{
	"Identifier", "project_url", "general_description", "objectives",
	"beneficiaries", "status", "notes",
}

// CandidateRecord is one entry detected on a listing page
// Built once by the extractor and never mutated afterwards
type CandidateRecord struct {
	SourceSeed     string
	PageNum        int // 1-based, per seed
	Title          string
	DetailURL      string // Absolute
	Date           string
	Country        string
	Sector         string // Empty if the card carries no category text
	SectorFromCard bool
}

// ResolvedRow is one manifest row
type ResolvedRow struct {
	SourceSeed string
	PageNum    int
	Title      string
	Date       string
	Country    string
	Sector     string // Confirmed category
	DetailURL  string
	PDFURL     string
	Status     RowStatus
	Notes      string // "; "-joined diagnostics
}

// NewRow seeds a ResolvedRow with the record's listing fields
func NewRow(rec CandidateRecord) ResolvedRow {
	return ResolvedRow{
		SourceSeed: rec.SourceSeed,
		PageNum:    rec.PageNum,
		Title:      rec.Title,
		Date:       rec.Date,
		Country:    rec.Country,
		DetailURL:  rec.DetailURL,
	}
}

// Record returns the row's fields in ManifestHeader order
func (r ResolvedRow) Record() []string {
	return []string{
		r.SourceSeed,
		strconv.Itoa(r.PageNum),
		r.Title,
		r.Date,
		r.Country,
		r.Sector,
		r.DetailURL,
		r.PDFURL,
		string(r.Status),
		r.Notes,
	}
}

// SectionRow is one line of the section extractor output
type SectionRow struct {
	Identifier         string
	ProjectURL         string
	GeneralDescription string
	Objectives         string
	Beneficiaries      string
	Status             SectionStatus
	Notes              string
}

// Record returns the row's fields in SectionsHeader order
func (r SectionRow) Record() []string {
	return []string{
		r.Identifier,
		r.ProjectURL,
		r.GeneralDescription,
		r.Objectives,
		r.Beneficiaries,
		string(r.Status),
		r.Notes,
	}
}

// VisitEntry is the value stored per detail URL in the dedup store
type VisitEntry struct {
	Status      VisitStatus `json:"status"`
	SourceSeed  string      `json:"source_seed,omitempty"`
	PageNum     int         `json:"page_num,omitempty"`
	ErrorType   string      `json:"error_type,omitempty"` // Error category (on failure)
	LastAttempt time.Time   `json:"last_attempt"`
}
