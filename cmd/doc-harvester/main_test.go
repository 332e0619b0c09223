package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "doc-harvester "+version+"\n", out)
}

func TestHarvest_InvalidSeed(t *testing.T) {
	dir := t.TempDir()
	code, _, errOut := run(t, "harvest", "--seeds", "ftp://example.com/docs", "--out-dir", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid seed URL 'ftp://example.com/docs'")
	assert.NoFileExists(t, filepath.Join(dir, "harvester.log"), "fails before logging starts")
}

func TestHarvest_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/documents", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div class="views-row"><h3><a href="/en/documents/rice">Rice Appraisal</a></h3>
				<span class="date">2023</span><span class="country">Senegal</span>
				<span class="sector">Agriculture &amp; Agro-industries</span></div>
			<div class="views-row"><h3><a href="/en/documents/grid">Grid Study</a></h3>
				<span class="sector">Energy &amp; Agro-power</span></div>
		</body></html>`)
	})
	mux.HandleFunc("/en/documents/rice", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/sites/default/files/documents/rice.pdf">PDF</a></body></html>`)
	})
	mux.HandleFunc("/sites/default/files/documents/rice.pdf", func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", fmt.Sprintf(`
harvest:
  origin: %q
  rate_limit: 0
  page_delay: 0
`, srv.URL))
	outDir := filepath.Join(dir, "outputs")

	args := []string{"harvest", "--config", cfgPath, "--url", srv.URL + "/en/documents", "--out-dir", outDir, "--loglevel", "warn"}
	for i := 0; i < 2; i++ {
		code, out, errOut := run(t, args...)
		require.Equal(t, 0, code, errOut)
		assert.Contains(t, out, "Target sector: Agriculture & Agro-industries")
		assert.Contains(t, out, "Mode: append")
	}

	data, err := os.ReadFile(filepath.Join(outDir, "afdb_manifest.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "one header, one row per run")
	assert.Equal(t, "source_seed,page_num,title,date,country,sector,detail_url,pdf_url,status,notes", lines[0])
	assert.Equal(t, srv.URL+"/en/documents,1,Rice Appraisal,2023,Senegal,Agriculture & Agro-industries,"+
		srv.URL+"/en/documents/rice,"+srv.URL+"/sites/default/files/documents/rice.pdf,linked,sector from card", lines[1])
	assert.FileExists(t, filepath.Join(outDir, "harvester.log"))

	code, _, errOut := run(t, append(args, "--fresh")...)
	require.Equal(t, 0, code, errOut)
	data, err = os.ReadFile(filepath.Join(outDir, "afdb_manifest.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 2)
}

func TestCleanCSV(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "corpus.csv", "Methodology: manual review\nTitle,Identifier\nRice,P-SN-AA0-001\n")
	out := filepath.Join(dir, "clean.csv")

	code, stdout, _ := run(t, "clean-csv", in, out)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "kept 2 rows")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Title,Identifier\nRice,P-SN-AA0-001\n", string(data))
}

func TestCleanCSV_MissingInput(t *testing.T) {
	code, _, errOut := run(t, "clean-csv", filepath.Join(t.TempDir(), "nope.csv"), "out.csv")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "filesystem error")
}

func TestSections_RequiresInput(t *testing.T) {
	code, _, errOut := run(t, "sections")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "sections needs an input CSV")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid config prints effective yaml", func(t *testing.T) {
		cfgPath := writeFile(t, dir, "ok.yaml", `
harvest:
  seeds: ["https://www.afdb.org/en/documents"]
  max_pages: 3
`)
		code, out, _ := run(t, "validate", "--config", cfgPath)
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "max_pages: 3")
		assert.Contains(t, out, "Configuration valid.")
	})

	t.Run("defaults warn about seeds", func(t *testing.T) {
		code, out, _ := run(t, "validate")
		assert.Equal(t, 0, code)
		assert.Contains(t, out, "WARN: no seeds given")
	})

	t.Run("bad seed fails", func(t *testing.T) {
		cfgPath := writeFile(t, dir, "bad.yaml", "harvest:\n  seeds: [\"www.afdb.org\"]\n")
		code, _, errOut := run(t, "validate", "--config", cfgPath)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "must start with http")
	})

	t.Run("missing config file", func(t *testing.T) {
		code, _, errOut := run(t, "validate", "--config", filepath.Join(dir, "absent.yaml"))
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "Error:")
	})

	t.Run("bad rules file", func(t *testing.T) {
		rulesPath := writeFile(t, dir, "rules.yaml", "cards: []\n")
		code, _, errOut := run(t, "validate", "--rules", rulesPath)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "rule list 'cards' is empty")
	})
}
