package flow

import "galaxy/diagram"

// PairColumns links the i-th segment of each classified stage in source to the i-th
// segment of the same stage in target, producing min(a, b) links per stage.
// Stages are visited in first-appearance order of source, then of target.
func PairColumns(source, target []diagram.Segment) []diagram.Link {
	bySource := groupByStage(source)
	byTarget := groupByStage(target)

	var links []diagram.Link
	for _, stage := range stageOrder(source, target) {
		from := bySource[stage]
		to := byTarget[stage]
		n := min(len(from), len(to))
		for i := 0; i < n; i++ {
			links = append(links, diagram.Link{
				Stage:     stage,
				SourceCol: from[i].Col,
				TargetCol: to[i].Col,
				Source:    from[i],
				Target:    to[i],
				Rank:      i,
			})
		}
	}
	return links
}

// BuildLinks pairs every two consecutive columns of the display order.
// segments is indexed by raw column index.
func BuildLinks(order diagram.ColumnOrder, segments [][]diagram.Segment) []diagram.Link {
	var links []diagram.Link
	for i := 0; i+1 < len(order); i++ {
		src, dst := order[i], order[i+1]
		if src < 0 || src >= len(segments) || dst < 0 || dst >= len(segments) {
			continue
		}
		links = append(links, PairColumns(segments[src], segments[dst])...)
	}
	return links
}

// CountByStage returns how many segments of each stage a column holds.
func CountByStage(segments []diagram.Segment) map[diagram.Stage]int {
	counts := make(map[diagram.Stage]int)
	for _, s := range segments {
		counts[s.Stage]++
	}
	return counts
}

func groupByStage(segments []diagram.Segment) map[diagram.Stage][]diagram.Segment {
	groups := make(map[diagram.Stage][]diagram.Segment)
	for _, s := range segments {
		if !s.Stage.Known() {
			continue
		}
		groups[s.Stage] = append(groups[s.Stage], s)
	}
	return groups
}

func stageOrder(columns ...[]diagram.Segment) []diagram.Stage {
	seen := make(map[diagram.Stage]bool)
	var stages []diagram.Stage
	for _, segments := range columns {
		for _, s := range segments {
			if !s.Stage.Known() || seen[s.Stage] {
				continue
			}
			seen[s.Stage] = true
			stages = append(stages, s.Stage)
		}
	}
	return stages
}
