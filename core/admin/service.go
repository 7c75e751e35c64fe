package admin

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
)

var (
	ErrNotFound    = errors.New("admin not found")
	ErrEmailExists = errors.New("an admin with this email already exists")
)

type (
	Repository interface {
		// Create stores `adm` and sets its ID and CreatedAt.
		Create(ctx context.Context, adm *Admin) error
		Get(ctx context.Context, id int64) (Admin, error)
		// GetByEmail returns ErrNotFound when no admin uses `email`.
		GetByEmail(ctx context.Context, email string) (Admin, error)
		QueryAll(ctx context.Context) ([]Admin, error)
		Update(ctx context.Context, id int64, fields core.Fields) error
		Delete(ctx context.Context, id int64) error
		Count(ctx context.Context) (int64, error)
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
	adm, err := svc.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case adm.ID == excludedID:
		return nil
	}
	return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
}

func (svc *Service) Create(ctx context.Context, na NewAdmin) (Admin, error) {
	if err := na.Validate(); err != nil {
		return Admin{}, err
	}
	if err := svc.checkEmail(ctx, na.Email, 0); err != nil {
		return Admin{}, err
	}
	adm := Admin{Name: na.Name, Surname: na.Surname, Email: na.Email}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	if err := svc.repo.Create(ctx, &adm); err != nil {
		return Admin{}, err
	}
	return adm, nil
}

func (svc *Service) Get(ctx context.Context, id int64) (Admin, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Admin, error) {
	return svc.repo.GetByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]Admin, error) {
	return svc.repo.QueryAll(ctx)
}

func (svc *Service) Count(ctx context.Context) (int64, error) {
	return svc.repo.Count(ctx)
}

func (svc *Service) Update(ctx context.Context, id int64, ua UpdateAdmin) (Admin, error) {
	if err := ua.Validate(); err != nil {
		return Admin{}, err
	}
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return Admin{}, err
	}
	if ua.Email != "" {
		if err := svc.checkEmail(ctx, ua.Email, id); err != nil {
			return Admin{}, err
		}
	}
	fields := core.Fields{}.
		Set("name", ua.Name, ua.Name != "").
		Set("surname", ua.Surname, ua.Surname != "").
		Set("email", ua.Email, ua.Email != "")
	if ua.Password != "" {
		var tmp Admin
		if err := tmp.SetPassword(ua.Password); err != nil {
			return Admin{}, errors.Wrap(err, "hashing password")
		}
		fields["password_hash"] = tmp.PasswordHash
	}
	if err := svc.repo.Update(ctx, id, fields); err != nil {
		return Admin{}, err
	}
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.Delete(ctx, id)
}
