package crawler

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// ManifestWriter persists a run's rows as <dir>/<name>.csv
type ManifestWriter struct {
	path  string
	fresh bool
	log   *logrus.Entry
}

// NewManifestWriter creates a writer for dir/fileName.
// fresh truncates the file on write; otherwise rows are appended after existing content.
func NewManifestWriter(dir, fileName string, fresh bool, log *logrus.Entry) *ManifestWriter {
	return &ManifestWriter{
		path:  filepath.Join(dir, fileName),
		fresh: fresh,
		log:   log,
	}
}

// Path returns the manifest file path
func (m *ManifestWriter) Path() string {
	return m.path
}

// Write serializes rows in ManifestHeader column order.
// Rows without a manifest status are logged and left out.
func (m *ManifestWriter) Write(rows []models.ResolvedRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if !row.Status.IsValid() {
			m.log.WithField("detail_url", row.DetailURL).Warnf("Skipping manifest row with status '%s'", row.Status)
			continue
		}
		records = append(records, row.Record())
	}

	if m.fresh {
		m.log.Infof("Fresh mode: Truncating manifest file: %s", m.path)
	} else {
		m.log.Infof("Append mode: Appending to manifest file: %s", m.path)
	}

	headerWritten, err := utils.WriteCSV(m.path, models.ManifestHeader, records, !m.fresh)
	if err != nil {
		m.log.Errorf("Failed to write manifest '%s': %v", m.path, err)
		return err
	}
	m.log.WithField("header_written", headerWritten).Infof("Wrote %d rows to %s", len(records), m.path)
	return nil
}
