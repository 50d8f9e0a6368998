package v1

// PyLearnConfig holds the optional YAML configuration for the external
// content sources. Every field has a usable default so the app runs with no
// config file at all.
type PyLearnConfig struct {
	Documentation DocumentationConfig `yaml:"documentation"`
	StackExchange StackExchangeConfig `yaml:"stackExchange"`
	GitHub        GitHubConfig        `yaml:"github"`
}

// DocumentationConfig lists the documentation pages the docs loader fetches.
type DocumentationConfig struct {
	Pages []string `yaml:"pages,omitempty"`
}

// StackExchangeConfig controls the Stack Exchange questions query.
type StackExchangeConfig struct {
	Site     string `yaml:"site,omitempty"`
	Tag      string `yaml:"tag,omitempty"`
	PageSize int    `yaml:"pageSize,omitempty"`
}

// GitHubConfig lists repositories ("owner/name") whose READMEs feed the
// knowledge base.
type GitHubConfig struct {
	Repos []string `yaml:"repos,omitempty"`
}

func (c *PyLearnConfig) ApplyDefaults() {
	if len(c.Documentation.Pages) == 0 {
		c.Documentation.Pages = []string{
			"https://docs.python.org/3/tutorial/controlflow.html",
			"https://docs.python.org/3/tutorial/datastructures.html",
			"https://docs.python.org/3/tutorial/errors.html",
		}
	}
	if c.StackExchange.Site == "" {
		c.StackExchange.Site = "stackoverflow"
	}
	if c.StackExchange.Tag == "" {
		c.StackExchange.Tag = "python"
	}
	if c.StackExchange.PageSize == 0 {
		c.StackExchange.PageSize = 20
	}
	if len(c.GitHub.Repos) == 0 {
		c.GitHub.Repos = []string{"python/cpython", "psf/requests"}
	}
}
