package course

import (
	"context"
	"strings"

	"github.com/kat-co/vala"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/trainer"
)

type (
	Repository interface {
		// Create stores `c` and sets its ID and CreatedAt.
		Create(ctx context.Context, c *Course) error
		Get(ctx context.Context, id int64) (Course, error)
		GetMany(ctx context.Context, ids []int64) ([]Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		ByTrainer(ctx context.Context, trainerID int64) ([]Course, error)
		Update(ctx context.Context, id int64, fields core.Fields) error
		Delete(ctx context.Context, id int64) error
		// SessionCount returns how many sessions belong to the course.
		SessionCount(ctx context.Context, id int64) (int64, error)
	}

	// Trainers resolves the trainers courses point to.
	Trainers interface {
		Get(ctx context.Context, id int64) (trainer.Trainer, error)
		GetMany(ctx context.Context, ids []int64) ([]trainer.Trainer, error)
	}

	Service struct {
		repo     Repository
		trainers Trainers
	}
)

func NewService(repo Repository, trainers Trainers) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(trainers, "trainers"),
	).CheckAndPanic()
	return &Service{repo: repo, trainers: trainers}
}

func (svc *Service) checkTrainer(ctx context.Context, id int64) error {
	if _, err := svc.trainers.Get(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return core.NewFieldValidationError("trainer_id", "trainer does not exist")
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Validate(); err != nil {
		return Course{}, err
	}
	if err := svc.checkTrainer(ctx, nc.TrainerID); err != nil {
		return Course{}, err
	}
	c := Course{Title: nc.Title, Description: nc.Description, TrainerID: nc.TrainerID}
	if err := svc.repo.Create(ctx, &c); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (svc *Service) Get(ctx context.Context, id int64) (Course, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) GetMany(ctx context.Context, ids []int64) ([]Course, error) {
	return svc.repo.GetMany(ctx, ids)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAll(ctx)
}

func (svc *Service) ByTrainer(ctx context.Context, trainerID int64) ([]Course, error) {
	return svc.repo.ByTrainer(ctx, trainerID)
}

// Search does a case-insensitive match of `q` on the title or description of every course.
func (svc *Service) Search(ctx context.Context, q string) ([]Course, error) {
	all, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	q = core.CleanString(q, true /* lower */)
	if q == "" {
		return all, nil
	}
	res := make([]Course, 0)
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.Description), q) {
			res = append(res, c)
		}
	}
	return res, nil
}

func (svc *Service) Update(ctx context.Context, id int64, uc UpdateCourse) (Course, error) {
	if err := uc.Validate(); err != nil {
		return Course{}, err
	}
	orig, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.TrainerID != nil && *uc.TrainerID != orig.TrainerID {
		if err = svc.checkTrainer(ctx, *uc.TrainerID); err != nil {
			return Course{}, err
		}
	}
	if err = svc.repo.Update(ctx, id, uc.fields()); err != nil {
		return Course{}, err
	}
	return svc.repo.Get(ctx, id)
}

// Delete removes course `id`, unless sessions still belong to it.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	n, err := svc.repo.SessionCount(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &core.InUseError{Entity: "course", ID: id, Dependents: "sessions"}
	}
	return svc.repo.Delete(ctx, id)
}

// WithDetails returns every course with the name of its trainer, or UnknownTrainer when it is gone.
func (svc *Service) WithDetails(ctx context.Context) ([]Details, error) {
	courses, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.TrainerID)
	}
	trainers, err := svc.trainers.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(trainers))
	for _, tr := range trainers {
		names[tr.ID] = tr.FullName()
	}

	res := make([]Details, 0, len(courses))
	for _, c := range courses {
		name, ok := names[c.TrainerID]
		if !ok {
			name = UnknownTrainer
		}
		res = append(res, Details{Course: c, TrainerName: name})
	}
	return res, nil
}
