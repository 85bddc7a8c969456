package output

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/torosent/clientrace/internal/harness"
	"github.com/torosent/clientrace/internal/threshold"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt      string
	Report           *harness.Report
	Fastest          string
	ThresholdResults []threshold.Result
	ThresholdSummary *ThresholdSummary
	ErrorKinds       []string
}

// ThresholdSummary aggregates pass/fail counts for the report header.
type ThresholdSummary struct {
	Total  int
	Passed int
	Failed int
}

// GenerateHTMLReport generates a standalone HTML comparison report.
func GenerateHTMLReport(w io.Writer, report *harness.Report, thresholdResults []threshold.Result) error {
	var summary *ThresholdSummary
	if len(thresholdResults) > 0 {
		summary = &ThresholdSummary{Total: len(thresholdResults)}
		for _, tr := range thresholdResults {
			if tr.Pass {
				summary.Passed++
			} else {
				summary.Failed++
			}
		}
	}

	data := HTMLReportData{
		GeneratedAt:      time.Now().Format(time.RFC3339),
		Report:           report,
		Fastest:          fastestBackend(report),
		ThresholdResults: thresholdResults,
		ThresholdSummary: summary,
		ErrorKinds:       collectErrorKinds(report),
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatMs": func(ms float64) string {
			return fmt.Sprintf("%.2f", ms)
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
		"errorCount": func(errors map[string]int, kind string) int {
			return errors[kind]
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

func collectErrorKinds(report *harness.Report) []string {
	seen := make(map[string]bool)
	for _, res := range report.Results {
		if res.Stats == nil {
			continue
		}
		for kind := range res.Stats.Errors {
			seen[kind] = true
		}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Clientrace Comparison Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.3rem;
            margin-bottom: 20px;
            color: #2c3e50;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            font-size: 0.9rem;
        }
        th, td {
            text-align: left;
            padding: 10px 14px;
            border-bottom: 1px solid #e9ecef;
        }
        th {
            background: #f8f9fa;
            color: #6c757d;
            text-transform: uppercase;
            font-size: 0.75rem;
            letter-spacing: 0.5px;
        }
        tr.fastest td:first-child::after {
            content: " \2605";
            color: #10b981;
        }
        .fail {
            color: #ef4444;
            font-weight: bold;
        }
        .pass {
            color: #10b981;
        }
        footer {
            padding: 20px 40px;
            background: #f8f9fa;
            color: #6c757d;
            font-size: 0.8rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Clientrace Comparison Report</h1>
            <div class="meta">
                Run {{.Report.RunID}} &middot; Target {{.Report.Target}} &middot;
                {{.Report.Count}} requests per backend &middot; Generated {{.GeneratedAt}}
            </div>
        </header>
        <div class="content">
            <div class="section">
                <h2>Backends</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Backend</th>
                            <th>Requests</th>
                            <th>Failures</th>
                            <th>Req/sec</th>
                            <th>Mean (ms)</th>
                            <th>P50 (ms)</th>
                            <th>P95 (ms)</th>
                            <th>P99 (ms)</th>
                            <th>Max (ms)</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Report.Results}}
                        {{if .Failed}}
                        <tr>
                            <td>{{.Name}}</td>
                            <td colspan="8" class="fail">{{.Error}}</td>
                        </tr>
                        {{else}}
                        <tr{{if eq .Name $.Fastest}} class="fastest"{{end}}>
                            <td>{{.Name}}</td>
                            <td>{{.Stats.Count}}</td>
                            <td{{if gt .Stats.Failures 0}} class="fail"{{end}}>{{.Stats.Failures}}</td>
                            <td>{{formatFloat .Stats.RequestsPerSec}}</td>
                            <td>{{formatMs .Stats.MeanLatencyMs}}</td>
                            <td>{{formatMs .Stats.P50LatencyMs}}</td>
                            <td>{{formatMs .Stats.P95LatencyMs}}</td>
                            <td>{{formatMs .Stats.P99LatencyMs}}</td>
                            <td>{{formatMs .Stats.MaxLatencyMs}}</td>
                        </tr>
                        {{end}}
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{if .ErrorKinds}}
            <div class="section">
                <h2>Error Breakdown</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Backend</th>
                            {{range .ErrorKinds}}<th>{{.}}</th>{{end}}
                        </tr>
                    </thead>
                    <tbody>
                        {{range .Report.Results}}
                        {{if .Stats}}
                        <tr>
                            <td>{{.Name}}</td>
                            {{$errors := .Stats.Errors}}
                            {{range $.ErrorKinds}}<td>{{errorCount $errors .}}</td>{{end}}
                        </tr>
                        {{end}}
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
            {{if .ThresholdSummary}}
            <div class="section">
                <h2>Thresholds ({{.ThresholdSummary.Passed}}/{{.ThresholdSummary.Total}} passed)</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Backend</th>
                            <th>Threshold</th>
                            <th>Actual</th>
                            <th>Result</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ThresholdResults}}
                        <tr>
                            <td>{{.Backend}}</td>
                            <td>{{.Threshold.Raw}}</td>
                            <td>{{formatFloat .Actual}}</td>
                            {{if .Pass}}<td class="pass">PASS</td>{{else}}<td class="fail">FAIL</td>{{end}}
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
        <footer>Generated by clientrace</footer>
    </div>
</body>
</html>
`
