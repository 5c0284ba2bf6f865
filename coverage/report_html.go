package coverage

import (
	_ "embed"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin-valerio/phink/utils"
)

//go:embed report_template.gohtml
var reportTemplateSource string

//go:embed report_index_template.gohtml
var indexTemplateSource string

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateSource))
var indexTemplate = template.Must(template.New("index").Parse(indexTemplateSource))

// indexEntry is one row of the top-level index page.
type indexEntry struct {
	Path       string
	File       string
	Percentage int
}

// GenerateReport renders a top-level index page linking one per-file HTML page per entry in
// sources, each marking lines covered or uncovered per AnalyzeSource's three rules. outputDir is
// created if it does not already exist.
func GenerateReport(sources map[string][]byte, observed map[uint32]bool, outputDir string) error {
	if err := utils.MakeDirectory(outputDir); err != nil {
		return newError("failed to create coverage report output directory", err)
	}

	var entries []indexEntry
	for path, source := range sources {
		analysis := AnalyzeSource(path, source, observed)

		fileName := reportFileName(path)
		if err := writeHTML(reportTemplate, analysis, filepath.Join(outputDir, fileName)); err != nil {
			return err
		}

		entries = append(entries, indexEntry{
			Path:       path,
			File:       fileName,
			Percentage: coveredPercentage(analysis),
		})
	}

	return writeHTML(indexTemplate, entries, filepath.Join(outputDir, "index.html"))
}

func writeHTML(tmpl *template.Template, data any, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return newError("failed to open report file for writing", err)
	}
	err = tmpl.Execute(file, data)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return newError("failed to render report template", err)
	}
	return nil
}

// reportFileName derives a filesystem-safe page name for a source path.
func reportFileName(path string) string {
	replaced := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(path)
	return replaced + ".html"
}

// coveredPercentage computes the percentage of non-beacon lines marked covered.
func coveredPercentage(a *SourceAnalysis) int {
	total, covered := 0, 0
	for _, l := range a.Lines {
		if l.IsBeacon {
			continue
		}
		if strings.TrimSpace(l.Contents) == "" {
			continue
		}
		total++
		if l.IsCovered {
			covered++
		}
	}
	if total == 0 {
		return 100
	}
	return covered * 100 / total
}
