package rewrite

import (
	"fmt"
	"os"
	"path/filepath"

	engine "github.com/gnolang/tpath/internal/rewrite"
)

// Binding is the value chosen for one parameter.
type Binding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Case is a feasible path of a function with the inputs that reach it.
type Case struct {
	Label      string    `json:"label"`
	Path       string    `json:"path"`
	Assignment []Binding `json:"assignment"`
}

// FuncResult is the outcome for one function. At most one of Err and
// Skipped is set; otherwise the function was rewritten.
type FuncResult struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Cases   []Case `json:"cases,omitempty"`
	Skipped string `json:"skipped,omitempty"`
	Err     string `json:"error,omitempty"`
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Filename string       `json:"file"`
	Funcs    []FuncResult `json:"funcs"`
	// Source is the rewritten file.
	Source []byte `json:"-"`
}

// Failed reports whether any function could not be rewritten.
func (r *FileResult) Failed() bool {
	for _, f := range r.Funcs {
		if f.Err != "" {
			return true
		}
	}
	return false
}

// Rewritten counts the functions whose body was replaced.
func (r *FileResult) Rewritten() int {
	n := 0
	for _, f := range r.Funcs {
		if f.Err == "" && f.Skipped == "" {
			n++
		}
	}
	return n
}

// Write stores the rewritten source. With an empty dir the original file is
// overwritten; otherwise the file is written into dir under its base name.
func (r *FileResult) Write(dir string) (string, error) {
	path := r.Filename
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("error creating output directory: %w", err)
		}
		path = filepath.Join(dir, filepath.Base(r.Filename))
	}
	if err := os.WriteFile(path, r.Source, 0o644); err != nil {
		return "", fmt.Errorf("error writing %s: %w", path, err)
	}
	return path, nil
}

func convertCases(cases []engine.Case) []Case {
	out := make([]Case, len(cases))
	for i, c := range cases {
		bindings := make([]Binding, len(c.Assignment))
		for j, b := range c.Assignment {
			bindings[j] = Binding{Name: b.Name, Value: b.Value.String()}
		}
		out[i] = Case{Label: string(c.Label), Path: c.Trace(), Assignment: bindings}
	}
	return out
}

// header marks rewritten files as generated.
func header(filename string) string {
	return fmt.Sprintf("// Code generated by tpath from %s. DO NOT EDIT.\n\n", filepath.Base(filename))
}
