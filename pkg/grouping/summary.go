package grouping

import (
	"math"
	"sort"
)

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalGroups     int         `json:"total_groups"`
	TotalJobs       int         `json:"total_jobs"`
	AvgJobsPerGroup float64     `json:"avg_jobs_per_group"`
	TopCompanies    []NameCount `json:"top_companies"`
	TopCities       []NameCount `json:"top_cities"`
}

// Summarize weights companies and cities by the positions of their groups.
func Summarize(groups []Group) Summary {
	s := Summary{TopCompanies: []NameCount{}, TopCities: []NameCount{}}
	if len(groups) == 0 {
		return s
	}
	companies := map[string]int{}
	cities := map[string]int{}
	for _, g := range groups {
		s.TotalJobs += g.TotalPositions
		companies[g.Company] += g.TotalPositions
		for _, c := range g.Cities {
			cities[c] += g.TotalPositions
		}
	}
	s.TotalGroups = len(groups)
	s.AvgJobsPerGroup = math.Round(float64(s.TotalJobs)/float64(s.TotalGroups)*10) / 10
	s.TopCompanies = topN(companies, 5)
	s.TopCities = topN(cities, 10)
	return s
}

func topN(counts map[string]int, n int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, NameCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
