package report

import (
	"fmt"
	"html/template"
	"io"
	"text/tabwriter"
)

// WriteText renders the summary as aligned plain text.
func WriteText(w io.Writer, s *Summary) error {
	fmt.Fprintf(w, "Demographic Summary - Study %s\n", s.StudyID)
	fmt.Fprintf(w, "Generated %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Subjects: %d   Safety population: %d\n\n", s.Total, s.SafetyPopulation)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeSection := func(title string, rows []CountRow) {
		fmt.Fprintf(tw, "%s\t\t\n", title)
		for _, r := range rows {
			fmt.Fprintf(tw, "  %s\t%d\t%.1f%%\n", r.Value, r.Count, r.Percent)
		}
		fmt.Fprintln(tw, "\t\t")
	}
	writeSection("Age group", s.AgeGroups)
	writeSection("Sex", s.Sex)
	writeSection("Race (reconciled)", s.Race)
	writeSection("Ethnicity", s.Ethnicity)
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.AgeStats.N > 0 {
		fmt.Fprintf(w, "Age: n=%d mean=%.1f sd=%.1f median=%.1f min=%d max=%d\n",
			s.AgeStats.N, s.AgeStats.Mean, s.AgeStats.SD, s.AgeStats.Median,
			s.AgeStats.Min, s.AgeStats.Max)
	}
	return nil
}

var htmlTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Demographic Summary - {{.Summary.StudyID}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #999; padding: 0.3rem 0.8rem; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h1>Demographic Summary - Study {{.Summary.StudyID}}</h1>
<p>Generated {{.Summary.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}.
Subjects: {{.Summary.Total}}. Safety population: {{.Summary.SafetyPopulation}}.</p>

{{range .Sections}}
<h2>{{.Title}}</h2>
<table>
<tr><th>Category</th><th>N</th><th>%</th></tr>
{{range .Rows}}<tr><td>{{.Value}}</td><td>{{.Count}}</td><td>{{printf "%.1f" .Percent}}</td></tr>
{{end}}</table>
{{end}}

{{if gt .Summary.AgeStats.N 0}}
<h2>Age</h2>
<table>
<tr><th>N</th><th>Mean</th><th>SD</th><th>Median</th><th>Min</th><th>Max</th></tr>
<tr><td>{{.Summary.AgeStats.N}}</td><td>{{printf "%.1f" .Summary.AgeStats.Mean}}</td>
<td>{{printf "%.1f" .Summary.AgeStats.SD}}</td><td>{{printf "%.1f" .Summary.AgeStats.Median}}</td>
<td>{{.Summary.AgeStats.Min}}</td><td>{{.Summary.AgeStats.Max}}</td></tr>
</table>
{{end}}

{{range .Figures}}<p><img src="{{.}}" alt="{{.}}"></p>
{{end}}
</body>
</html>
`))

type htmlData struct {
	Summary  *Summary
	Sections []htmlSection
	Figures  []string
}

type htmlSection struct {
	Title string
	Rows  []CountRow
}

// WriteHTML renders the summary as a standalone HTML page. figures are
// relative image paths embedded at the bottom of the page.
func WriteHTML(w io.Writer, s *Summary, figures []string) error {
	data := htmlData{
		Summary: s,
		Sections: []htmlSection{
			{"Age group", s.AgeGroups},
			{"Sex", s.Sex},
			{"Race (reconciled)", s.Race},
			{"Ethnicity", s.Ethnicity},
		},
		Figures: figures,
	}
	return htmlTmpl.Execute(w, data)
}
