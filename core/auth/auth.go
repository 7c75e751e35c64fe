// Package auth identifies the person using the application. Roles gate the screens they see;
// nothing beyond this check is enforced.
package auth

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/admin"
	"github.com/trezcool/presence/core/trainer"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTrainer = "trainer"
)

var ErrAuthenticationFailed = errors.New("invalid email or password")

// Principal is an authenticated account.
type Principal struct {
	Role  string `json:"role"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Can reports whether the principal holds `role`. Admins hold every role.
func (p Principal) Can(role string) bool {
	return p.Role == RoleAdmin || p.Role == role
}

type (
	Admins interface {
		GetByEmail(ctx context.Context, email string) (admin.Admin, error)
	}

	Trainers interface {
		GetByEmail(ctx context.Context, email string) (trainer.Trainer, error)
	}

	Service struct {
		admins   Admins
		trainers Trainers
	}
)

func NewService(admins Admins, trainers Trainers) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(admins, "admins"),
		vala.IsNotNil(trainers, "trainers"),
	).CheckAndPanic()
	return &Service{admins: admins, trainers: trainers}
}

// Authenticate checks `email` and `password` against the admins, then the trainers.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (Principal, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" || password == "" {
		return Principal{}, ErrAuthenticationFailed
	}

	adm, err := svc.admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if adm.CheckPassword(password) == nil {
			return Principal{Role: RoleAdmin, ID: adm.ID, Name: adm.FullName(), Email: adm.Email}, nil
		}
	case !errors.Is(err, admin.ErrNotFound):
		return Principal{}, err
	}

	tr, err := svc.trainers.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if tr.CheckPassword(password) == nil {
			return Principal{Role: RoleTrainer, ID: tr.ID, Name: tr.FullName(), Email: tr.Email}, nil
		}
	case !errors.Is(err, trainer.ErrNotFound):
		return Principal{}, err
	}
	return Principal{}, ErrAuthenticationFailed
}
