package service

import (
	"testing"
	"time"

	"github.com/noah-isme/wellness-api/internal/kv"
	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/internal/repository"
)

var testNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

var (
	studentActor         = models.Actor{UserID: "EST-1234", Email: "estudiante@sistema.edu", Role: models.RoleStudent}
	psychologistActor    = models.Actor{UserID: "PSY-001", Email: "psicologo@sistema.edu", Role: models.RolePsychologist}
	tutorActor           = models.Actor{UserID: "TUT-001", Email: "tutor@sistema.edu", Role: models.RoleTutor}
	psychopedagogueActor = models.Actor{UserID: "PSPED-001", Email: "psicopedagogo@sistema.edu", Role: models.RolePsychopedagogue}
	adminActor           = models.Actor{UserID: "ADM-001", Email: "admin@sistema.edu", Role: models.RoleAdmin}
)

func newTestStore(t *testing.T) (*repository.DataStore, kv.KV) {
	t.Helper()
	backing := kv.NewMemory()
	store := repository.NewDataStore(repository.Deps{
		KV:    backing,
		Clock: func() time.Time { return testNow },
	})
	return store, backing
}

func fixedClock() time.Time { return testNow }
