package scorecard

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"

	"github.com/musclemap/apiprobe/pkg/models"
)

// ExportJSON writes the scorecard structure verbatim.
func ExportJSON(w io.Writer, sc *models.Scorecard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sc)
}

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     float64          `xml:"time,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string  `xml:"name,attr"`
	Tests    int     `xml:"tests,attr"`
	Failures int     `xml:"failures,attr"`
	Skipped  int     `xml:"skipped,attr"`
	Time     float64 `xml:"time,attr"`
}

// ExportJUnit emits one <testsuite> element per category with aggregate
// counts. Individual <testcase> elements are not emitted.
func ExportJUnit(w io.Writer, sc *models.Scorecard) error {
	doc := junitTestSuites{
		Name:     fmt.Sprintf("apiprobe-%s", sc.RunID),
		Tests:    sc.Summary.Total,
		Failures: sc.Summary.Failed,
		Skipped:  sc.Summary.Skipped,
		Time:     sc.Duration.Seconds(),
	}
	for _, cs := range sc.Categories {
		doc.Suites = append(doc.Suites, junitTestSuite{
			Name:     string(cs.Category),
			Tests:    cs.Total,
			Failures: cs.Failed,
			Skipped:  cs.Skipped,
			Time:     cs.Duration.Seconds(),
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

var htmlReport = template.Must(template.New("scorecard").Funcs(template.FuncMap{
	"gradeClass": func(grade string) string {
		switch grade {
		case "A+", "A", "B":
			return "grade-pass"
		case "C", "D":
			return "grade-warn"
		default:
			return "grade-fail"
		}
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>API Scorecard {{.RunID}}</title>
<style>
  body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem; color: #222; }
  .cards { display: flex; gap: 1rem; margin-bottom: 2rem; }
  .card { border: 1px solid #ddd; border-radius: 8px; padding: 1rem 1.5rem; min-width: 8rem; text-align: center; }
  .card .value { font-size: 2rem; font-weight: 600; }
  .grade-pass { color: #2e7d32; } .grade-warn { color: #f9a825; } .grade-fail { color: #c62828; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 2rem; }
  th, td { border: 1px solid #ddd; padding: 0.5rem 0.75rem; text-align: left; }
  th { background: #f5f5f5; }
  .rec { border-left: 4px solid #999; padding: 0.5rem 1rem; margin-bottom: 0.75rem; }
  .rec.critical { border-color: #c62828; } .rec.warning { border-color: #f9a825; } .rec.info { border-color: #1565c0; }
</style>
</head>
<body>
<h1>API Scorecard</h1>
<p>Run {{.RunID}} against <strong>{{.Env}}</strong>{{if .Persona}} as <strong>{{.Persona}}</strong>{{end}} in {{.Duration}}</p>
<div class="cards">
  <div class="card"><div class="value {{gradeClass .Grade}}">{{.Grade}}</div><div>Grade</div></div>
  <div class="card"><div class="value">{{printf "%.1f%%" .Summary.PassRate}}</div><div>Pass rate</div></div>
  <div class="card"><div class="value">{{.Summary.Total}}</div><div>Total</div></div>
  <div class="card"><div class="value grade-pass">{{.Summary.Passed}}</div><div>Passed</div></div>
  <div class="card"><div class="value grade-fail">{{.Summary.Failed}}</div><div>Failed</div></div>
  <div class="card"><div class="value">{{.Summary.Skipped}}</div><div>Skipped</div></div>
</div>
<h2>Categories</h2>
<table>
  <tr><th>Category</th><th>Total</th><th>Passed</th><th>Failed</th><th>Skipped</th><th>Pass rate</th><th>Grade</th></tr>
  {{range .Categories}}
  <tr>
    <td>{{.Category}}</td><td>{{.Total}}</td><td>{{.Passed}}</td><td>{{.Failed}}</td>
    <td>{{.Skipped}}</td><td>{{printf "%.1f%%" .PassRate}}</td>
    <td class="{{gradeClass .Grade}}">{{.Grade}}</td>
  </tr>
  {{end}}
</table>
{{if .Recommendations}}
<h2>Recommendations</h2>
{{range .Recommendations}}
<div class="rec {{.Severity}}">
  <strong>{{.Severity}}</strong>: {{.Message}}<br>
  {{.Suggestion}}
  {{if .AffectedTests}}<br><em>Affected: {{range .AffectedTests}}{{.}} {{end}}</em>{{end}}
</div>
{{end}}
{{end}}
</body>
</html>
`))

// ExportHTML renders the static single-page report.
func ExportHTML(w io.Writer, sc *models.Scorecard) error {
	return htmlReport.Execute(w, sc)
}
