// Package githubloader pulls README content for configured repositories into
// the knowledge base. Stargazer counts serve as the popularity signal.
package githubloader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v45/github"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/simsonbaroi/OrionAiTesting/pkg/dataloader"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db"
	"github.com/simsonbaroi/OrionAiTesting/pkg/db/models"
	"github.com/simsonbaroi/OrionAiTesting/pkg/knowledge"
)

type GitHubLoader struct {
	dbc   *db.DB
	runID uuid.UUID
	repos []string

	repoFetch   func(owner, name string) (*gh.Repository, error)
	readmeFetch func(owner, name string) (string, error)

	errors []error
}

// New builds a loader for the given "owner/name" repositories. An
// authenticated client is used when GITHUB_TOKEN is set; anonymous requests
// work but get rate-limited quickly.
func New(ctx context.Context, dbc *db.DB, runID uuid.UUID, repos []string) *GitHubLoader {
	var ghc *gh.Client
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		ghc = gh.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		log.Warning("no GITHUB_TOKEN set, using unauthenticated GitHub client")
		ghc = gh.NewClient(nil)
	}

	return &GitHubLoader{
		dbc:   dbc,
		runID: runID,
		repos: repos,
		repoFetch: func(owner, name string) (*gh.Repository, error) {
			repo, _, err := ghc.Repositories.Get(ctx, owner, name)
			return repo, err
		},
		readmeFetch: func(owner, name string) (string, error) {
			readme, _, err := ghc.Repositories.GetReadme(ctx, owner, name, nil)
			if err != nil {
				return "", err
			}
			return readme.GetContent()
		},
	}
}

func (l *GitHubLoader) Name() string {
	return "github"
}

func (l *GitHubLoader) Errors() []error {
	return l.errors
}

func (l *GitHubLoader) Load() {
	start := time.Now()
	created := 0

	for _, fullName := range l.repos {
		owner, name, ok := strings.Cut(fullName, "/")
		if !ok {
			l.errors = append(l.errors, errors.Errorf("malformed repository name %q, expected owner/name", fullName))
			continue
		}

		sourceURL := fmt.Sprintf("https://github.com/%s/%s", owner, name)
		var count int64
		if err := l.dbc.DB.Model(&models.ContentItem{}).
			Where("source_url = ?", sourceURL).
			Count(&count).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not check for existing repo %s", fullName))
			continue
		}
		if count > 0 {
			log.Debugf("repository %s already present, skipping", fullName)
			continue
		}

		repo, err := l.repoFetch(owner, name)
		if err != nil {
			log.WithError(err).Warningf("could not fetch repository %s", fullName)
			l.errors = append(l.errors, errors.Wrapf(err, "could not fetch repository %s", fullName))
			continue
		}

		readme, err := l.readmeFetch(owner, name)
		if err != nil {
			log.WithError(err).Warningf("could not fetch README for %s", fullName)
			l.errors = append(l.errors, errors.Wrapf(err, "could not fetch README for %s", fullName))
			continue
		}
		if readme == "" {
			l.errors = append(l.errors, errors.Errorf("empty README for %s", fullName))
			continue
		}

		title := fmt.Sprintf("%s README", fullName)
		item := models.ContentItem{
			Title:        title,
			Body:         readme,
			SourceType:   models.SourceCodeHost,
			SourceURL:    sourceURL,
			QualityScore: knowledge.Score(title, readme, repo.GetStargazersCount()),
		}
		if err := l.dbc.DB.Create(&item).Error; err != nil {
			l.errors = append(l.errors, errors.Wrapf(err, "could not store README for %s", fullName))
			continue
		}
		created++
	}

	log.Infof("github loader stored %d of %d repositories in %+v", created, len(l.repos), time.Since(start))
	dataloader.RecordRun(l.dbc, l.runID, l.Name(), created, l.errors, time.Since(start))
}
