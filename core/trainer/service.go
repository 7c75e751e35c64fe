package trainer

import (
	"context"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
)

var (
	ErrNotFound    = errors.New("trainer not found")
	ErrEmailExists = errors.New("a trainer with this email already exists")
)

type (
	Repository interface {
		// Create stores `tr` and sets its ID and CreatedAt.
		Create(ctx context.Context, tr *Trainer) error
		Get(ctx context.Context, id int64) (Trainer, error)
		GetMany(ctx context.Context, ids []int64) ([]Trainer, error)
		// GetByEmail returns ErrNotFound when no trainer uses `email`.
		GetByEmail(ctx context.Context, email string) (Trainer, error)
		QueryAll(ctx context.Context) ([]Trainer, error)
		Update(ctx context.Context, id int64, fields core.Fields) error
		Delete(ctx context.Context, id int64) error
		Count(ctx context.Context) (int64, error)
		// References returns how many courses and sessions point to the trainer.
		References(ctx context.Context, id int64) (courses, sessions int64, err error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	vala.BeginValidation().Validate(vala.IsNotNil(repo, "repo")).CheckAndPanic()
	return &Service{repo: repo}
}

func (svc *Service) checkEmail(ctx context.Context, email string, excludedID int64) error {
	tr, err := svc.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case tr.ID == excludedID:
		return nil
	}
	return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
}

func (svc *Service) Create(ctx context.Context, nt NewTrainer) (Trainer, error) {
	if err := nt.Validate(); err != nil {
		return Trainer{}, err
	}
	if err := svc.checkEmail(ctx, nt.Email, 0); err != nil {
		return Trainer{}, err
	}
	tr := Trainer{Name: nt.Name, Surname: nt.Surname, Email: nt.Email, Phone: nt.Phone}
	if err := tr.SetPassword(nt.Password); err != nil {
		return Trainer{}, errors.Wrap(err, "hashing password")
	}
	if err := svc.repo.Create(ctx, &tr); err != nil {
		return Trainer{}, err
	}
	return tr, nil
}

func (svc *Service) Get(ctx context.Context, id int64) (Trainer, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) GetMany(ctx context.Context, ids []int64) ([]Trainer, error) {
	return svc.repo.GetMany(ctx, ids)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Trainer, error) {
	return svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Exists reports whether trainer `id` is stored.
func (svc *Service) Exists(ctx context.Context, id int64) (bool, error) {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		if core.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Trainer, error) {
	return svc.repo.QueryAll(ctx)
}

func (svc *Service) Count(ctx context.Context) (int64, error) {
	return svc.repo.Count(ctx)
}

// Search does a case-insensitive match of `q` on the name, surname or email of every trainer.
func (svc *Service) Search(ctx context.Context, q string) ([]Trainer, error) {
	all, err := svc.repo.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	q = core.CleanString(q, true /* lower */)
	if q == "" {
		return all, nil
	}
	res := make([]Trainer, 0)
	for _, tr := range all {
		if strings.Contains(strings.ToLower(tr.Name), q) ||
			strings.Contains(strings.ToLower(tr.Surname), q) ||
			strings.Contains(strings.ToLower(tr.FullName()), q) ||
			strings.Contains(tr.Email, q) {
			res = append(res, tr)
		}
	}
	return res, nil
}

func (svc *Service) Update(ctx context.Context, id int64, ut UpdateTrainer) (Trainer, error) {
	orig, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Trainer{}, err
	}
	if err = ut.Validate(orig); err != nil {
		return Trainer{}, err
	}
	if ut.Email != "" {
		if err = svc.checkEmail(ctx, ut.Email, id); err != nil {
			return Trainer{}, err
		}
	}
	fields := ut.fields()
	if ut.Password != "" {
		if err = orig.SetPassword(ut.Password); err != nil {
			return Trainer{}, errors.Wrap(err, "hashing password")
		}
		fields["password_hash"] = orig.PasswordHash
	}
	if err = svc.repo.Update(ctx, id, fields); err != nil {
		return Trainer{}, err
	}
	return svc.repo.Get(ctx, id)
}

// Delete removes trainer `id`, unless courses or sessions still reference it.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	courses, sessions, err := svc.repo.References(ctx, id)
	if err != nil {
		return err
	}
	if courses+sessions > 0 {
		var deps []string
		if courses > 0 {
			deps = append(deps, "courses")
		}
		if sessions > 0 {
			deps = append(deps, "sessions")
		}
		return &core.InUseError{Entity: "trainer", ID: id, Dependents: strings.Join(deps, " and ")}
	}
	return svc.repo.Delete(ctx, id)
}
