package validation

import (
	"strings"
	"testing"

	"galaxy/diagram"
	"galaxy/flow"
	"galaxy/layout"
)

func buildInput(t *testing.T, order diagram.ColumnOrder, notebooks ...[]string) Input {
	t.Helper()
	m, err := diagram.NewModel(diagram.FromLabels(notebooks...))
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	segs := flow.BuildAllSegments(m)
	links := flow.BuildLinks(order, segs)
	g, err := layout.Compute(layout.Input{
		Model: m, Segments: segs, Links: links, Order: order, ContainerWidth: 600,
	}, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	return Input{Model: m, Segments: segs, Links: links, Order: order, Geometry: g}
}

func TestValidDiagrams(t *testing.T) {
	tests := []struct {
		name      string
		order     diagram.ColumnOrder
		notebooks [][]string
	}{
		{"empty", diagram.ColumnOrder{}, nil},
		{"single column", diagram.ColumnOrder{0}, [][]string{{"A", "A", "B"}}},
		{"unclassified runs", diagram.ColumnOrder{0, 1}, [][]string{{"A", "", "", "A"}, {"", "A"}}},
		{"reordered", diagram.ColumnOrder{2, 0, 1}, [][]string{{"A", "B", "A"}, {"B"}, {"A", "A", "B", "B", "A"}}},
		{"empty column", diagram.ColumnOrder{0, 1, 2}, [][]string{{"A"}, {}, {"A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := buildInput(t, tt.order, tt.notebooks...)
			if errs := NewLayoutValidator().Validate(in); len(errs) != 0 {
				t.Errorf("unexpected violations: %v", errs)
			}
		})
	}
}

func TestDetectsBrokenPartition(t *testing.T) {
	in := buildInput(t, diagram.ColumnOrder{0}, []string{"A", "A", "B"})
	in.Geometry = nil

	// split the A run in two
	in.Segments[0] = []diagram.Segment{
		{Col: 0, Stage: "A", RowStart: 0, RowEnd: 1},
		{Col: 0, Stage: "A", RowStart: 1, RowEnd: 2},
		{Col: 0, Stage: "B", RowStart: 2, RowEnd: 3},
	}
	errs := NewLayoutValidator().Validate(in)
	if !hasCheck(errs, "maximal") {
		t.Errorf("expected a maximality violation, got %v", errs)
	}

	// drop the last row
	in.Segments[0] = []diagram.Segment{{Col: 0, Stage: "A", RowStart: 0, RowEnd: 2}}
	errs = NewLayoutValidator().Validate(in)
	if !hasCheck(errs, "partition") {
		t.Errorf("expected a coverage violation, got %v", errs)
	}
}

func TestDetectsBadLinks(t *testing.T) {
	in := buildInput(t, diagram.ColumnOrder{0, 1, 2}, []string{"A", "B"}, []string{"A"}, []string{"A", "B"})
	in.Geometry = nil

	// a link between non-adjacent columns, and one link missing
	in.Links = []diagram.Link{{
		Stage: "B", SourceCol: 0, TargetCol: 2,
		Source: in.Segments[0][1], Target: in.Segments[2][1],
	}}
	errs := NewLayoutValidator().Validate(in)
	if !hasCheck(errs, "links") {
		t.Fatalf("expected link violations, got %v", errs)
	}
	var adjacency, count bool
	for _, e := range errs {
		adjacency = adjacency || strings.Contains(e.Message, "not adjacent")
		count = count || strings.Contains(e.Message, `"A" links`)
	}
	if !adjacency || !count {
		t.Errorf("expected adjacency and count violations, got %v", errs)
	}
}

func TestDetectsMisplacedGeometry(t *testing.T) {
	in := buildInput(t, diagram.ColumnOrder{0, 1}, []string{"A"}, []string{"A"})
	in.Geometry.Ribbons[0].X1 += 1

	errs := NewLayoutValidator().Validate(in)
	if !hasCheck(errs, "ribbon") {
		t.Errorf("expected a ribbon violation, got %v", errs)
	}

	in = buildInput(t, diagram.ColumnOrder{0, 1}, []string{"A"}, []string{"A"})
	in.Order = diagram.ColumnOrder{1, 0}
	errs = NewLayoutValidator().Validate(in)
	if !hasCheck(errs, "geometry") {
		t.Errorf("geometry for another order should not validate, got %v", errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Check: "links", Col: 2, Message: "boom"}
	if got := e.String(); got != "[links] column 2: boom" {
		t.Errorf("String() = %q", got)
	}
	e.Col = -1
	if got := e.String(); got != "[links] boom" {
		t.Errorf("String() = %q", got)
	}
}

func hasCheck(errs []ValidationError, check string) bool {
	for _, e := range errs {
		if e.Check == check {
			return true
		}
	}
	return false
}
