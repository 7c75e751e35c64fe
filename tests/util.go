package testutil

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/presence/apps/container"
	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/course"
	"github.com/trezcool/presence/core/learner"
	"github.com/trezcool/presence/core/session"
	"github.com/trezcool/presence/core/trainer"
	logsvc "github.com/trezcool/presence/services/logger"
)

// Clock is a settable clock for services taking a core.NowFunc.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

// At returns the local time for the given date and HH:mm.
func At(date, hhmm string) time.Time {
	t, err := time.ParseInLocation(core.DateLayout+" "+core.TimeLayout, date+" "+hhmm, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Config returns the test configuration: an in-memory database and the default window.
func Config() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = true
	conf.DatabasePath = ":memory:"
	conf.PresenceStartTime = "07:30"
	conf.PresenceEndTime = "08:00"
	conf.SyncBatchSize = 50
	conf.RollbarToken = ""
	return conf
}

// Logger returns a logger that prints nowhere.
func Logger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), Config())
}

// PrepareContainer returns the services over a fresh, migrated, in-memory database,
// closed when the test ends.
func PrepareContainer(t *testing.T, clock *Clock) *container.Container {
	t.Helper()
	var opts []container.Option
	if clock != nil {
		opts = append(opts, container.WithNowFunc(clock.Now))
	}
	c, err := container.New(context.Background(), Config(), Logger(), opts...)
	if err != nil {
		t.Fatalf("container.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func CreateTrainer(t *testing.T, svc *trainer.Service, name, surname, email string) trainer.Trainer {
	t.Helper()
	tr, err := svc.Create(context.Background(), trainer.NewTrainer{
		Name:     name,
		Surname:  surname,
		Email:    email,
		Phone:    "0102030405",
		Password: "s3cret-Pass",
	})
	if err != nil {
		t.Fatalf("createTrainer() failed: %v", err)
	}
	return tr
}

func CreateLearner(t *testing.T, svc *learner.Service, name, surname string) learner.Learner {
	t.Helper()
	l, err := svc.Create(context.Background(), learner.NewLearner{Name: name, Surname: surname})
	if err != nil {
		t.Fatalf("createLearner() failed: %v", err)
	}
	return l
}

func CreateCourse(t *testing.T, svc *course.Service, title string, trainerID int64) course.Course {
	t.Helper()
	c, err := svc.Create(context.Background(), course.NewCourse{Title: title, TrainerID: trainerID})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return c
}

func CreateSession(t *testing.T, svc *session.Service, date, start, end string, courseID, trainerID int64) session.Session {
	t.Helper()
	s, err := svc.Create(context.Background(), session.NewSession{
		Date:      date,
		StartTime: start,
		EndTime:   end,
		CourseID:  courseID,
		TrainerID: trainerID,
	})
	if err != nil {
		t.Fatalf("createSession() failed: %v", err)
	}
	return s
}

// Fixture is a trainer with a course and a session on a given day.
type Fixture struct {
	Trainer trainer.Trainer
	Course  course.Course
	Session session.Session
}

func CreateFixture(t *testing.T, c *container.Container, date string) Fixture {
	t.Helper()
	tr := CreateTrainer(t, c.Trainers, "Marie", "Curie", "marie.curie@formation.com")
	crs := CreateCourse(t, c.Courses, "Chemistry", tr.ID)
	s := CreateSession(t, c.Sessions, date, "08:00", "10:00", crs.ID, tr.ID)
	return Fixture{Trainer: tr, Course: crs, Session: s}
}
