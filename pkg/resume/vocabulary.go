package resume

// skillVocabulary is the fixed set of terms ExtractSkills looks for.
var skillVocabulary = map[string][]string{
	"programming_languages": {
		"python", "java", "javascript", "typescript", "c++", "c#", "php", "ruby", "go", "golang", "rust",
		"swift", "kotlin", "scala", "r", "matlab", "perl", "shell", "bash", "powershell",
	},
	"web_technologies": {
		"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask",
		"spring", "laravel", "rails", "asp.net", "jquery", "bootstrap", "sass", "less",
	},
	"databases": {
		"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch", "oracle",
		"sqlite", "cassandra", "dynamodb", "neo4j", "influxdb", "mssql",
	},
	"cloud_platforms": {
		"aws", "azure", "gcp", "google cloud", "amazon web services", "microsoft azure",
		"heroku", "digitalocean", "openstack",
	},
	"devops_tools": {
		"docker", "kubernetes", "jenkins", "gitlab ci", "github actions", "ansible",
		"terraform", "vagrant", "puppet", "nagios", "prometheus", "grafana", "zabbix", "helm",
	},
	"systems_administration": {
		"linux", "windows server", "active directory", "vmware", "hyper-v", "proxmox", "citrix",
		"exchange", "office 365", "microsoft 365", "intune", "dns", "dhcp", "tcp/ip", "firewall",
		"vpn", "nginx", "apache", "itil", "backup", "networking",
	},
	"data_science": {
		"machine learning", "deep learning", "ai", "artificial intelligence", "pandas",
		"numpy", "scikit-learn", "tensorflow", "pytorch", "keras", "jupyter", "tableau",
		"power bi", "spark", "hadoop", "kafka",
	},
	"version_control": {
		"git", "github", "gitlab", "bitbucket", "svn", "mercurial",
	},
	"methodologies": {
		"agile", "scrum", "kanban", "devops", "ci/cd", "tdd", "bdd", "microservices",
		"rest api", "graphql", "soap",
	},
	"soft_skills": {
		"leadership", "teamwork", "communication", "problem solving", "critical thinking",
		"project management", "mentoring", "training",
	},
}

// Section headings used to cut the document into parts.
var (
	educationHeadings = []string{
		"education", "academic background", "ausbildung", "studium", "bildungsweg", "bildung",
	}
	otherHeadings = []string{
		"experience", "work experience", "professional experience", "employment history",
		"berufserfahrung", "berufliche erfahrung", "skills", "technical skills", "kenntnisse",
		"projects", "projekte", "certifications", "certificates", "zertifikate", "languages",
		"sprachen", "interests", "hobbies", "references", "referenzen", "summary", "profile", "profil",
	}
	degreeKeywords = []string{
		"bachelor", "master", "b.sc", "m.sc", "bsc", "msc", "b.a.", "m.a.", "b.eng", "m.eng",
		"diploma", "diplom", "phd", "ph.d", "doctorate", "mba", "associate degree",
		"fachinformatiker", "apprenticeship", "degree",
	}
)
