package memory

import (
	"time"

	"ai-sitebuilder-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionRepository caches project sessions in front of the durable store.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func sessionKey(ownerId int64) string {
	return "session:" + itoa(ownerId)
}

func (r *SessionRepository) Save(session *entity.ProjectSession) {
	s := *session
	s.Projects = append([]entity.ProjectState(nil), session.Projects...)
	r.cache.Set(sessionKey(session.OwnerId), &s, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(ownerId int64) (*entity.ProjectSession, bool) {
	if x, found := r.cache.Get(sessionKey(ownerId)); found {
		s := *x.(*entity.ProjectSession)
		s.Projects = append([]entity.ProjectState(nil), s.Projects...)
		return &s, true
	}
	return nil, false
}

func (r *SessionRepository) Delete(ownerId int64) {
	r.cache.Delete(sessionKey(ownerId))
}
