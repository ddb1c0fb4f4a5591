package analysis

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/artem13815/jobdash/pkg/nlp"
)

// Category is a named family of job titles recognised by keywords.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Categories is the search domain: titles the candidate wants and titles
// that must be rejected whatever their quality.
type Categories struct {
	Domain string     `yaml:"domain" json:"domain"`
	Accept []Category `yaml:"accept" json:"accept"`
	Reject []Category `yaml:"reject" json:"reject"`
}

// DefaultCategories targets IT and system administration roles.
func DefaultCategories() Categories {
	return Categories{
		Domain: "IT/System Administration",
		Accept: []Category{
			{Name: "System Administration", Keywords: []string{"system administrator", "systemadministrator", "systemadministration", "sysadmin", "administrator", "admin"}},
			{Name: "IT Infrastructure", Keywords: []string{"infrastructure", "infrastruktur", "network", "netzwerk", "datacenter", "rechenzentrum"}},
			{Name: "Systems Engineering", Keywords: []string{"systems engineer", "system engineer", "systemingenieur", "linux engineer", "windows engineer", "cloud engineer", "devops"}},
			{Name: "IT Integration", Keywords: []string{"it integration", "integration engineer", "systemintegration", "systemintegrator"}},
			{Name: "IT Support", Keywords: []string{"it support", "helpdesk", "service desk", "support engineer", "it techniker", "fachinformatiker"}},
			{Name: "IT Operations", Keywords: []string{"it operations", "operations engineer", "site reliability", "sre", "it betrieb"}},
			{Name: "Technical IT Management", Keywords: []string{"it manager", "head of it", "it leiter", "it lead"}},
		},
		Reject: []Category{
			{Name: "Sales", Keywords: []string{"sales", "vertrieb", "account executive", "account manager", "business development", "verkäufer", "verkauf"}},
			{Name: "Marketing", Keywords: []string{"marketing", "seo", "social media", "content manager"}},
			{Name: "Customer Support", Keywords: []string{"customer support", "customer service", "kundenservice", "kundenbetreuer", "call center"}},
			{Name: "Design", Keywords: []string{"designer", "ux", "ui", "grafik", "graphic"}},
			{Name: "Project Management", Keywords: []string{"project manager", "projektmanager", "projektleiter", "scrum master", "product owner"}},
			{Name: "HR/Finance/Administrative", Keywords: []string{"recruiter", "recruiting", "human resources", "hr", "buchhaltung", "buchhalter", "accountant", "finance", "controller", "sachbearbeiter", "office manager", "assistenz", "assistant"}},
			{Name: "Healthcare/Education/Retail", Keywords: []string{"nurse", "pflege", "pflegefachkraft", "arzt", "doctor", "teacher", "lehrer", "erzieher", "retail", "einzelhandel", "kassierer", "cashier"}},
		},
	}
}

// LoadCategories reads a YAML category file. An empty path yields the
// defaults; an empty list in the file keeps the default list.
func LoadCategories(path string) (Categories, error) {
	def := DefaultCategories()
	if strings.TrimSpace(path) == "" {
		return def, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("read categories: %w", err)
	}
	var c Categories
	if err := yaml.Unmarshal(data, &c); err != nil {
		return def, fmt.Errorf("parse categories %s: %w", path, err)
	}
	if c.Domain == "" {
		c.Domain = def.Domain
	}
	if len(c.Accept) == 0 {
		c.Accept = def.Accept
	}
	if len(c.Reject) == 0 {
		c.Reject = def.Reject
	}
	return c, nil
}

// Verdict is the keyword classification of a title.
type Verdict struct {
	Category string
	Accepted bool
	Rejected bool
	Keyword  string
}

// Classify matches a title against the lists. Reject wins over accept.
func (c Categories) Classify(title string) Verdict {
	norm := nlp.NormalizeText(title)
	if cat, kw, ok := firstMatch(norm, c.Reject); ok {
		return Verdict{Category: cat, Rejected: true, Keyword: kw}
	}
	if cat, kw, ok := firstMatch(norm, c.Accept); ok {
		return Verdict{Category: cat, Accepted: true, Keyword: kw}
	}
	return Verdict{Category: "Other"}
}

func firstMatch(normTitle string, cats []Category) (string, string, bool) {
	for _, cat := range cats {
		for _, kw := range cat.Keywords {
			if nlp.ContainsPhrase(normTitle, nlp.NormalizeText(kw)) {
				return cat.Name, kw, true
			}
		}
	}
	return "", "", false
}

func names(cats []Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return out
}
