// Package report renders run records as Markdown or HTML summaries.
package report

import (
	"fmt"
	"strings"

	"creditrisk/domain/metrics"
	"creditrisk/domain/run"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Format selects the report output
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts md, markdown or html
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want md or html)", s)
}

// Render produces the report in the requested format
func Render(r *run.Record, f Format) []byte {
	if f == FormatHTML {
		return HTML(r)
	}
	return []byte(Markdown(r))
}

// Markdown renders a run summary
func Markdown(r *run.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Run %s\n\n", r.ID)
	fmt.Fprintf(&b, "- **Status:** %s\n", r.Status)
	fmt.Fprintf(&b, "- **Data:** `%s` (%d rows, %d columns)\n", r.DataPath, r.Rows, r.Columns)
	fmt.Fprintf(&b, "- **Data hash:** `%s`\n", r.DataHash.Short())
	fmt.Fprintf(&b, "- **Created:** %s\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if r.Fingerprint.Hash != "" {
		fmt.Fprintf(&b, "- **Fingerprint:** `%s`\n", r.Fingerprint.Hash.Short())
	}
	b.WriteString("\n## Validation\n\n")
	if r.Valid {
		b.WriteString("All required columns are present.\n")
	} else {
		fmt.Fprintf(&b, "Missing required columns: %s\n", codeList(r.MissingColumns))
	}

	b.WriteString("\n## Preparation\n\n")
	fmt.Fprintf(&b, "| Step | Setting |\n|---|---|\n")
	fmt.Fprintf(&b, "| Imputation | %s |\n", orNone(r.ImputeStrategy))
	fmt.Fprintf(&b, "| Outlier clipping | %s |\n", orNone(r.OutlierMethod))
	fmt.Fprintf(&b, "| Clipped columns | %s |\n", orNone(strings.Join(r.ClippedColumns, ", ")))
	fmt.Fprintf(&b, "| Split | %d train / %d test (fraction %.2f, seed %d) |\n",
		r.TrainRows, r.TestRows, r.TestFraction, r.Seed)

	if len(r.Profiles) > 0 {
		b.WriteString("\n## Column profiles\n\n")
		b.WriteString("| Column | Count | Missing | Mean | Std | Min | Q1 | Median | Q3 | Max | Outliers |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, p := range r.Profiles {
			fmt.Fprintf(&b, "| %s | %d | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %d |\n",
				p.Name, p.Count, p.Missing, p.Mean, p.StdDev, p.Min, p.Q1, p.Median, p.Q3, p.Max, p.Outliers)
		}
	}

	if m := r.Metrics; m != nil {
		b.WriteString("\n## Evaluation\n\n")
		b.WriteString("| Metric | Value |\n|---|---:|\n")
		values := m.Map()
		for _, name := range metrics.Names() {
			fmt.Fprintf(&b, "| %s | %.4f |\n", name, values[name])
		}
		c := m.Confusion
		b.WriteString("\n| | Predicted 1 | Predicted 0 |\n|---|---:|---:|\n")
		fmt.Fprintf(&b, "| **Actual 1** | %d | %d |\n", c.TP, c.FN)
		fmt.Fprintf(&b, "| **Actual 0** | %d | %d |\n", c.FP, c.TN)
		if r.EvaluatedAt != nil {
			fmt.Fprintf(&b, "\nEvaluated %s.\n", r.EvaluatedAt.Format("2006-01-02 15:04:05 MST"))
		}
	}

	return b.String()
}

// HTML renders the Markdown summary as a complete HTML page
func HTML(r *run.Record) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(r)))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: fmt.Sprintf("Run %s", r.ID),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func codeList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}
