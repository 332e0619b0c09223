package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvedRow_RecordMatchesHeader(t *testing.T) {
	rec := CandidateRecord{
		SourceSeed: "https://www.afdb.org/en/documents",
		PageNum:    2,
		Title:      "Irrigation Appraisal Report",
		DetailURL:  "https://www.afdb.org/en/documents/irrigation",
		Date:       "12/03/2023",
		Country:    "Kenya",
		Sector:     "Agriculture & Agro-industries",
	}
	row := NewRow(rec)
	row.Sector = rec.Sector
	row.PDFURL = "https://www.afdb.org/sites/default/files/documents/irrigation.pdf"
	row.Status = RowStatusLinked
	row.Notes = "sector from card"

	record := row.Record()
	assert.Len(t, record, len(ManifestHeader))
	assert.Equal(t, []string{
		"https://www.afdb.org/en/documents", "2", "Irrigation Appraisal Report", "12/03/2023", "Kenya",
		"Agriculture & Agro-industries", "https://www.afdb.org/en/documents/irrigation",
		"https://www.afdb.org/sites/default/files/documents/irrigation.pdf", "linked", "sector from card",
	}, record)
}

func TestNewRow_LeavesResolutionFieldsEmpty(t *testing.T) {
	row := NewRow(CandidateRecord{Title: "T", DetailURL: "https://x/d", Sector: "Energy"})
	assert.Empty(t, row.Sector, "confirmed sector is set by category resolution, not copied from the card")
	assert.Empty(t, row.PDFURL)
	assert.Equal(t, RowStatusUnset, row.Status)
}

func TestSectionRow_RecordMatchesHeader(t *testing.T) {
	row := SectionRow{
		Identifier: "P-KE-A00-001",
		ProjectURL: "https://mapafrica.afdb.org/en/projects/46002-P-KE-A00-001",
		Objectives: "Raise yields",
		Status:     SectionStatusOK,
		Notes:      "sections extracted successfully",
	}
	record := row.Record()
	assert.Len(t, record, len(SectionsHeader))
	assert.Equal(t, "P-KE-A00-001", record[0])
	assert.Equal(t, "Raise yields", record[3])
	assert.Equal(t, "ok", record[5])
}
