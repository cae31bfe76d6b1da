package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/tpath/rewrite"
)

// function outcomes
const (
	StatusRewritten = "rewritten"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	nameStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
	noStyle         = color.New(color.FgWhite)
)

const funcTemplate = `{{header .Status .Name .Filename .Line}}
{{- if .Reason }}
{{reason .Status .Reason}}
{{- else if not .Cases }}
{{reason .Status "no returning path found"}}
{{- else }}
{{bar}}
{{- range .Cases }}
{{caseHeader .Label .Path}}
{{caseInputs .Assignment}}
{{- end }}
{{- end }}

`

var funcReport = template.Must(template.New("func").Funcs(template.FuncMap{
	"header":     header,
	"reason":     reason,
	"bar":        bar,
	"caseHeader": caseHeader,
	"caseInputs": caseInputs,
}).Parse(funcTemplate))

// FuncData is what the report template renders for one function.
type FuncData struct {
	Status   string
	Name     string
	Filename string
	Line     int
	Reason   string
	Cases    []rewrite.Case
}

func newFuncData(filename string, fr rewrite.FuncResult) FuncData {
	data := FuncData{
		Status:   StatusRewritten,
		Name:     fr.Name,
		Filename: filename,
		Line:     fr.Line,
		Cases:    fr.Cases,
	}
	switch {
	case fr.Err != "":
		data.Status = StatusError
		data.Reason = fr.Err
	case fr.Skipped != "":
		data.Status = StatusSkipped
		data.Reason = fr.Skipped
	}
	return data
}

// GenerateReport formats the results of a run into a human-readable string,
// one block per function in file order.
func GenerateReport(results []*rewrite.FileResult) string {
	var builder strings.Builder
	for _, result := range results {
		for _, fr := range result.Funcs {
			builder.WriteString(buildFunc(newFuncData(result.Filename, fr)))
		}
	}
	return builder.String()
}

func buildFunc(data FuncData) string {
	var buf bytes.Buffer
	if err := funcReport.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting result: %v", err)
	}
	return buf.String()
}

// Summary counts the outcomes of a run, e.g.
// "2 files: 3 rewritten, 1 skipped, 0 failed, 6 cases".
func Summary(results []*rewrite.FileResult) string {
	var rewritten, skipped, failed, cases int
	for _, result := range results {
		for _, fr := range result.Funcs {
			switch {
			case fr.Err != "":
				failed++
			case fr.Skipped != "":
				skipped++
			default:
				rewritten++
				cases += len(fr.Cases)
			}
		}
	}

	return fmt.Sprintf("%s: %d rewritten, %d skipped, %s, %d cases",
		plural(len(results), "file"), rewritten, skipped, failedCount(failed), cases)
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func failedCount(n int) string {
	if n == 0 {
		return "0 failed"
	}
	return errorStyle.Sprintf("%d failed", n)
}

// utils functions used in the text templates

func header(status, name, filename string, line int) string {
	var endString string
	switch status {
	case StatusError:
		endString = errorStyle.Sprintf("%s: ", status)
	case StatusSkipped:
		endString = warningStyle.Sprintf("%s: ", status)
	default:
		endString = suggestionStyle.Sprintf("%s: ", status)
	}
	endString += nameStyle.Sprintf("%s\n", name)
	endString += lineStyle.Sprint(" --> ")
	endString += fileStyle.Sprintf("%s:%d", filename, line)
	return endString
}

func reason(status, text string) string {
	style := noStyle
	if status == StatusError {
		style = messageStyle
	}
	return lineStyle.Sprint("  = ") + style.Sprint(text)
}

func bar() string {
	return lineStyle.Sprint("  |")
}

func caseHeader(label, path string) string {
	style := suggestionStyle
	if label == "FALSE" {
		style = warningStyle
	}
	return lineStyle.Sprint("  = ") + style.Sprintf("%-5s", label) + " " + path
}

func caseInputs(assignment []rewrite.Binding) string {
	if len(assignment) == 0 {
		return lineStyle.Sprint("  |   ") + "with no inputs"
	}
	parts := make([]string, len(assignment))
	for i, b := range assignment {
		parts[i] = b.Name + "=" + b.Value
	}
	return lineStyle.Sprint("  |   ") + "with " + strings.Join(parts, ", ")
}
