package mapper

import (
	"encoding/json"

	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/model"
)

type ProjectSessionMapper struct{}

func NewProjectSessionMapper() *ProjectSessionMapper {
	return &ProjectSessionMapper{}
}

func (m *ProjectSessionMapper) ToEntity(e *model.ProjectSession) (*entity.ProjectSession, error) {
	if e == nil {
		return nil, nil
	}

	var payload model.ProjectSessionPayload
	if len(e.Session) > 0 {
		if err := json.Unmarshal(e.Session, &payload); err != nil {
			return nil, err
		}
	}

	projects := make([]entity.ProjectState, len(payload.Projects))
	for i, p := range payload.Projects {
		projects[i] = entity.ProjectState(p)
	}

	return &entity.ProjectSession{
		OwnerId:             e.ChatId,
		Projects:            projects,
		CurrentProjectIndex: payload.CurrentProjectIndex,
		UpdatedAt:           e.UpdatedAt,
	}, nil
}

func (m *ProjectSessionMapper) ToModel(e *entity.ProjectSession) (*model.ProjectSession, error) {
	if e == nil {
		return nil, nil
	}

	payload := model.ProjectSessionPayload{
		Projects:            make([]model.ProjectStatePayload, len(e.Projects)),
		CurrentProjectIndex: e.CurrentProjectIndex,
	}
	for i, p := range e.Projects {
		payload.Projects[i] = model.ProjectStatePayload(p)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &model.ProjectSession{
		ChatId:    e.OwnerId,
		Session:   raw,
		UpdatedAt: e.UpdatedAt,
	}, nil
}
