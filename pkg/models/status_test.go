package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowStatus_String(t *testing.T) {
	tests := []struct {
		status RowStatus
		want   string
	}{
		{RowStatusUnset, "unset"},
		{RowStatusLinked, "linked"},
		{RowStatusNoPDF, "no_pdf"},
		{RowStatusError, "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestRowStatus_IsValid(t *testing.T) {
	tests := []struct {
		status RowStatus
		want   bool
	}{
		{RowStatusLinked, true},
		{RowStatusNoPDF, true},
		{RowStatusError, true},
		{RowStatusUnset, false},
		{RowStatus("rejected"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.IsValid(), "RowStatus(%q).IsValid()", string(tt.status))
	}
}

func TestSectionStatus_IsValid(t *testing.T) {
	tests := []struct {
		status SectionStatus
		want   bool
	}{
		{SectionStatusOK, true},
		{SectionStatusNoContent, true},
		{SectionStatusNotFound, true},
		{SectionStatusUnset, false},
		{SectionStatus("arbitrary"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.IsValid(), "SectionStatus(%q).IsValid()", string(tt.status))
	}
	assert.Equal(t, "unset", SectionStatusUnset.String())
}
