package measure

import (
	"sort"
	"time"
)

// StageTiming is a flat view of one stage metric.
type StageTiming struct {
	Name    string
	Items   int64
	Average time.Duration
	Total   time.Duration
}

// Summary lists the stages that processed at least one item, sorted by name.
func Summary(m Measure) []StageTiming {
	res := []StageTiming{}

	for name, mt := range m.AllMetrics() {
		if mt.Count() == 0 {
			continue
		}

		res = append(res, StageTiming{
			Name:    name,
			Items:   mt.Count(),
			Average: mt.AVGDuration(),
			Total:   mt.GetTotalDuration(),
		})
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})

	return res
}
