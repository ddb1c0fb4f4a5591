package grouping

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/artem13815/jobdash/pkg/job"
)

// Group is one real-world opening seen on one or more platforms/cities.
type Group struct {
	ID              string       `json:"group_id"`
	Company         string       `json:"company"`
	Title           string       `json:"title"`
	NormalizedTitle string       `json:"normalized_title"`
	Cities          []string     `json:"cities"`
	MemberJobs      []job.Record `json:"jobs"`
	Platforms       []string     `json:"platforms"`
	AvgSalary       *string      `json:"avg_salary,omitempty"`
	TotalPositions  int          `json:"total_positions"`
}

type Engine struct {
	cmp Comparer
	log *slog.Logger
}

func NewEngine(cmp Comparer, log *slog.Logger) *Engine {
	if cmp == nil {
		cmp = RuleComparer{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cmp: cmp, log: log}
}

// Group partitions records greedily: each unassigned record absorbs every
// later unassigned record with the same company and role. Input order
// decides group order and the representative member.
func (e *Engine) Group(ctx context.Context, records []job.Record) []Group {
	if len(records) == 0 {
		return []Group{}
	}
	assigned := make([]bool, len(records))
	usedIDs := make(map[string]int)
	groups := make([]Group, 0, len(records))

	for i := range records {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []job.Record{records[i]}
		for j := i + 1; j < len(records); j++ {
			if assigned[j] {
				continue
			}
			if e.similar(ctx, records[i], records[j]) {
				assigned[j] = true
				members = append(members, records[j])
			}
		}
		g := buildGroup(members)
		g.ID = uniqueID(g.ID, usedIDs)
		e.log.Debug("job group built", "group_id", g.ID, "jobs", len(members), "cities", g.Cities)
		groups = append(groups, g)
	}
	e.log.Info("jobs grouped", "jobs", len(records), "groups", len(groups))
	return groups
}

func (e *Engine) similar(ctx context.Context, a, b job.Record) bool {
	if a.Key() != "" && a.Key() == b.Key() {
		return true
	}
	// company first: the title test is the expensive one in LLM mode
	if !e.cmp.SameCompany(ctx, a.Company, b.Company) {
		return false
	}
	return e.cmp.SameTitle(ctx, a.Title, b.Title)
}

func buildGroup(members []job.Record) Group {
	first := members[0]
	company := strings.TrimSpace(first.Company)
	if company == "" {
		company = "Unknown Company"
	}
	nt := NormalizeTitle(first.Title)

	cities := make([]string, 0, len(members))
	platforms := make([]string, 0, len(members))
	salaries := make([]string, 0, len(members))
	for _, m := range members {
		cities = append(cities, m.Location)
		platforms = append(platforms, m.Source)
		salaries = append(salaries, m.SalaryText())
	}

	return Group{
		ID:              GroupID(company, nt),
		Company:         company,
		Title:           strings.TrimSpace(first.Title),
		NormalizedTitle: nt,
		Cities:          sortedSet(cities),
		MemberJobs:      members,
		Platforms:       sortedSet(platforms),
		AvgSalary:       AverageSalary(salaries),
		TotalPositions:  len(members),
	}
}

// GroupID is company_normalizedtitle, lower case, spaces as underscores.
func GroupID(company, normalizedTitle string) string {
	id := strings.ToLower(strings.TrimSpace(company) + "_" + normalizedTitle)
	return strings.Join(strings.Fields(id), "_")
}

func uniqueID(id string, used map[string]int) string {
	used[id]++
	if n := used[id]; n > 1 {
		return id + "_" + strconv.Itoa(n)
	}
	return id
}

func sortedSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
