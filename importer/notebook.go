package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"galaxy/diagram"
)

// ErrNotNotebook is returned for content that is not a Jupyter notebook.
var ErrNotNotebook = errors.New("not a Jupyter notebook")

// StageTagPrefix marks a cell tag that carries the stage, e.g. "stage:train".
const StageTagPrefix = "stage:"

// NotebookImporter reads code cells of an .ipynb file. The stage of a cell comes
// from metadata.stage, metadata.galaxy.stage or a "stage:<name>" tag, in that order.
// Cells without any of them are unclassified.
type NotebookImporter struct{}

// NewNotebookImporter creates a new notebook importer
func NewNotebookImporter() *NotebookImporter {
	return &NotebookImporter{}
}

// CanImport checks for an nbformat document with a cells array.
func (n *NotebookImporter) CanImport(content string) bool {
	if !gjson.Valid(content) {
		return false
	}
	res := gjson.GetMany(content, "nbformat", "cells")
	return res[0].Exists() && res[1].IsArray()
}

// Import returns a payload with the notebook as its only column.
func (n *NotebookImporter) Import(content string) (*diagram.Payload, error) {
	nb, err := n.ImportNotebook("", content)
	if err != nil {
		return nil, err
	}
	return &diagram.Payload{Notebooks: []diagram.Notebook{nb}}, nil
}

// ImportNotebook reads one notebook. path, when set, is recorded on the notebook
// and its base name becomes the column label.
func (n *NotebookImporter) ImportNotebook(path, content string) (diagram.Notebook, error) {
	if !n.CanImport(content) {
		if path != "" {
			return diagram.Notebook{}, fmt.Errorf("%s: %w", path, ErrNotNotebook)
		}
		return diagram.Notebook{}, ErrNotNotebook
	}
	doc := gjson.Parse(content)

	nb := diagram.Notebook{Path: path, Cells: []diagram.PayloadCell{}}
	if path != "" {
		nb.Name = filepath.Base(path)
	} else if title := doc.Get("metadata.title"); title.Type == gjson.String {
		nb.Name = title.String()
	}

	for i, cell := range doc.Get("cells").Array() {
		if cell.Get("cell_type").String() != "code" {
			continue
		}
		pc := diagram.PayloadCell{Code: source(cell.Get("source"))}
		if stage := cellStage(cell); stage != "" {
			pc.Class = &stage
		}
		id := cell.Get("id").String()
		if id == "" {
			id = fmt.Sprintf("%d", i)
		}
		pc.CellID = &id
		nb.Cells = append(nb.Cells, pc)
	}
	return nb, nil
}

// ImportNotebooks reads several notebooks into one payload, one column each,
// in the order given.
func (n *NotebookImporter) ImportNotebooks(paths []string, contents []string) (*diagram.Payload, error) {
	if len(paths) != len(contents) {
		return nil, fmt.Errorf("got %d paths for %d notebooks", len(paths), len(contents))
	}
	p := &diagram.Payload{Notebooks: make([]diagram.Notebook, 0, len(paths))}
	for i := range paths {
		nb, err := n.ImportNotebook(paths[i], contents[i])
		if err != nil {
			return nil, err
		}
		p.Notebooks = append(p.Notebooks, nb)
	}
	return p, nil
}

// GetFormatName returns the format name
func (n *NotebookImporter) GetFormatName() string {
	return "ipynb"
}

// GetFileExtensions returns common file extensions
func (n *NotebookImporter) GetFileExtensions() []string {
	return []string{".ipynb"}
}

// source joins a cell source, which nbformat allows as a string or a list of lines.
func source(v gjson.Result) string {
	if !v.IsArray() {
		return v.String()
	}
	var sb strings.Builder
	for _, line := range v.Array() {
		sb.WriteString(line.String())
	}
	return sb.String()
}

func cellStage(cell gjson.Result) string {
	for _, path := range []string{"metadata.stage", "metadata.galaxy.stage"} {
		if v := cell.Get(path); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
	}
	for _, tag := range cell.Get("metadata.tags").Array() {
		if s, ok := strings.CutPrefix(tag.String(), StageTagPrefix); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
