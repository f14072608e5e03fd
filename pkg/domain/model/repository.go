package model

import "github.com/m-mizutani/relwatch/pkg/domain/types"

// Repository is a watched repository with its optional notification settings
type Repository struct {
	ID        types.RepositoryID
	DocsURL   string   // Testing guidance link embedded in tracking issues
	Assignees []string // Tracking issue assignees
}
