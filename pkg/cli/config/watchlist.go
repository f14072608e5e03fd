package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// DefaultAssignees receive tracking issues of the default repositories
var DefaultAssignees = []string{"wayheming"}

// DefaultRepositories is watched when neither --repository nor --watchlist is given. Their
// testing guidance links and assignees also fill in configured entries with the same ID.
var DefaultRepositories = []*model.Repository{
	{
		ID:        "jackocnr/intl-tel-input",
		DocsURL:   "https://github.com/awesomemotive/wpforms-plugin/wiki/Phone-field%27s-%60intl%E2%80%90tel%E2%80%90input%60-library",
		Assignees: DefaultAssignees,
	},
	{
		ID:        "cure53/DOMPurify",
		DocsURL:   "https://github.com/awesomemotive/wpforms-plugin/wiki/DOMPurify-Lib-Update-testing",
		Assignees: DefaultAssignees,
	},
	{ID: "chartjs/Chart.js", Assignees: DefaultAssignees},
	{ID: "Choices-js/Choices", Assignees: DefaultAssignees},
	{ID: "WordPress/plugin-check", Assignees: DefaultAssignees},
}

// withDefaults copies missing settings from the default entry with the same ID
func withDefaults(repo *model.Repository) *model.Repository {
	for _, d := range DefaultRepositories {
		if d.ID != repo.ID {
			continue
		}
		merged := *repo
		if merged.DocsURL == "" {
			merged.DocsURL = d.DocsURL
		}
		if len(merged.Assignees) == 0 {
			merged.Assignees = d.Assignees
		}
		return &merged
	}
	return repo
}

// Watchlist holds the set of repositories processed by one run
type Watchlist struct {
	Repositories []string
	File         string
}

// Flags returns CLI flags for watch list configuration
func (c *Watchlist) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "repository",
			Aliases:     []string{"r"},
			Usage:       "Repository to watch as owner/name (repeatable)",
			Destination: &c.Repositories,
			Sources:     cli.EnvVars("RELWATCH_REPOSITORIES"),
		},
		&cli.StringFlag{
			Name:        "watchlist",
			Usage:       "TOML file listing repositories with docs_url and assignees",
			Destination: &c.File,
			Sources:     cli.EnvVars("RELWATCH_WATCHLIST"),
		},
	}
}

type watchlistFile struct {
	Repository []struct {
		ID        string   `toml:"id"`
		DocsURL   string   `toml:"docs_url"`
		Assignees []string `toml:"assignees"`
	} `toml:"repository"`
}

// ParseWatchlist decodes a TOML watch list:
//
//	[[repository]]
//	id = "cure53/DOMPurify"
//	docs_url = "https://example.com/testing"
//	assignees = ["octocat"]
func ParseWatchlist(data []byte) ([]*model.Repository, error) {
	var file watchlistFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse watch list", goerr.T(types.ErrTagInvalidConfig))
	}

	repos := make([]*model.Repository, 0, len(file.Repository))
	for _, r := range file.Repository {
		id := types.RepositoryID(r.ID)
		if err := id.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid repository in watch list")
		}
		repos = append(repos, &model.Repository{
			ID:        id,
			DocsURL:   r.DocsURL,
			Assignees: r.Assignees,
		})
	}
	return repos, nil
}

// Load returns the ordered watch list: entries of the file first, then --repository
// values. Duplicates keep their first occurrence.
func (c *Watchlist) Load() ([]*model.Repository, error) {
	if c.File == "" && len(c.Repositories) == 0 {
		return DefaultRepositories, nil
	}

	var repos []*model.Repository
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read watch list",
				goerr.V("path", c.File),
				goerr.T(types.ErrTagInvalidConfig),
			)
		}
		parsed, err := ParseWatchlist(data)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load watch list", goerr.V("path", c.File))
		}
		repos = append(repos, parsed...)
	}

	for _, v := range c.Repositories {
		id := types.RepositoryID(v)
		if err := id.Validate(); err != nil {
			return nil, err
		}
		repos = append(repos, &model.Repository{ID: id})
	}

	seen := make(map[types.RepositoryID]struct{}, len(repos))
	result := make([]*model.Repository, 0, len(repos))
	for _, r := range repos {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		result = append(result, withDefaults(r))
	}

	return result, nil
}
