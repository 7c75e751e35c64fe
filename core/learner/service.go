package learner

import (
	"context"
	"strings"

	"github.com/kat-co/vala"

	"github.com/trezcool/presence/core"
)

type (
	Repository interface {
		// Create stores `l` and sets its ID and CreatedAt.
		Create(ctx context.Context, l *Learner) error
		// CreateMany stores every learner of `ls` in one transaction.
		CreateMany(ctx context.Context, ls []Learner) ([]Learner, error)
		Get(ctx context.Context, id int64) (Learner, error)
		// GetMany returns the stored learners among `ids`; unknown ids are skipped.
		GetMany(ctx context.Context, ids []int64) ([]Learner, error)
		QueryAll(ctx context.Context) ([]Learner, error)
		Update(ctx context.Context, id int64, fields core.Fields) error
		// Delete removes the learner together with its assignments and attendance records.
		Delete(ctx context.Context, id int64) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(vala.IsNotNil(repo, "repo")).CheckAndPanic()
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nl NewLearner) (Learner, error) {
	if err := nl.Validate(); err != nil {
		return Learner{}, err
	}
	l := nl.learner()
	if err := svc.repo.Create(ctx, &l); err != nil {
		return Learner{}, err
	}
	return l, nil
}

// CreateMany validates every entry before storing any of them.
func (svc *Service) CreateMany(ctx context.Context, nls []NewLearner) ([]Learner, error) {
	ls := make([]Learner, 0, len(nls))
	for i := range nls {
		if err := nls[i].Validate(); err != nil {
			return nil, err
		}
		ls = append(ls, nls[i].learner())
	}
	if len(ls) == 0 {
		return ls, nil
	}
	return svc.repo.CreateMany(ctx, ls)
}

func (svc *Service) Get(ctx context.Context, id int64) (Learner, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) GetMany(ctx context.Context, ids []int64) ([]Learner, error) {
	return svc.repo.GetMany(ctx, ids)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Learner, error) {
	return svc.repo.QueryAll(ctx)
}

// Search does a case-insensitive match of `q` on the name, surname, email or phone of every learner.
func (svc *Service) Search(ctx context.Context, q string) ([]Learner, error) {
	all, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	q = core.CleanString(q, true /* lower */)
	if q == "" {
		return all, nil
	}
	res := make([]Learner, 0)
	for _, l := range all {
		if strings.Contains(strings.ToLower(l.FullName()), q) ||
			strings.Contains(strings.ToLower(l.Surname+" "+l.Name), q) ||
			strings.Contains(strings.ToLower(l.Email.String), q) ||
			strings.Contains(l.Phone.String, q) {
			res = append(res, l)
		}
	}
	return res, nil
}

func (svc *Service) Update(ctx context.Context, id int64, ul UpdateLearner) (Learner, error) {
	if err := ul.Validate(); err != nil {
		return Learner{}, err
	}
	if err := svc.repo.Update(ctx, id, ul.fields()); err != nil {
		return Learner{}, err
	}
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.Delete(ctx, id)
}
