package entity

import "time"

// ProjectSession is the conversational state of one chat: every project it started
// and which one is current.
type ProjectSession struct {
	OwnerId             int64
	Projects            []ProjectState
	CurrentProjectIndex int
	UpdatedAt           time.Time
}

type ProjectState struct {
	ProjectId       string            `json:"projectId"`
	Answers         map[string]any    `json:"answers,omitempty"`
	Sections        []string          `json:"sections,omitempty"`
	Patterns        map[string]string `json:"patterns,omitempty"`
	GeneratedFolder string            `json:"generatedFolder,omitempty"`
	Repo            string            `json:"repo,omitempty"`
	SiteURL         string            `json:"siteUrl,omitempty"`
	Domain          string            `json:"domain,omitempty"`
}

// Current returns the active project, or nil when the session is empty.
func (s *ProjectSession) Current() *ProjectState {
	if s == nil || len(s.Projects) == 0 {
		return nil
	}
	if s.CurrentProjectIndex < 0 || s.CurrentProjectIndex >= len(s.Projects) {
		return &s.Projects[len(s.Projects)-1]
	}
	return &s.Projects[s.CurrentProjectIndex]
}

// Find returns the project with the given id, or nil.
func (s *ProjectSession) Find(projectId string) *ProjectState {
	if s == nil {
		return nil
	}
	for i := range s.Projects {
		if s.Projects[i].ProjectId == projectId {
			return &s.Projects[i]
		}
	}
	return nil
}

// Upsert replaces the project with the same id or appends it, and makes it current.
func (s *ProjectSession) Upsert(project ProjectState) {
	for i := range s.Projects {
		if s.Projects[i].ProjectId == project.ProjectId {
			s.Projects[i] = project
			s.CurrentProjectIndex = i
			return
		}
	}
	s.Projects = append(s.Projects, project)
	s.CurrentProjectIndex = len(s.Projects) - 1
}
