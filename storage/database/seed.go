package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/presence/core"
	"github.com/trezcool/presence/core/admin"
	"github.com/trezcool/presence/core/trainer"
)

// SeedResult tells which default accounts were created.
type SeedResult struct {
	AdminCreated   bool
	TrainerCreated bool
}

// Seed creates the default admin when there is no admin at all and, on that first run,
// the default trainer when there is no trainer either. Running it again changes nothing.
func Seed(
	ctx context.Context,
	admins admin.Repository,
	trainers trainer.Repository,
	accounts core.SeedAccounts,
	logger core.Logger,
) (SeedResult, error) {
	var res SeedResult

	n, err := admins.Count(ctx)
	if err != nil {
		return res, errors.Wrap(err, "counting admins")
	}
	if n > 0 {
		return res, nil
	}

	adm := admin.Admin{
		Name:    accounts.AdminName,
		Surname: accounts.AdminSurname,
		Email:   core.CleanString(accounts.AdminEmail, true /* lower */),
	}
	if err = adm.SetPassword(accounts.AdminPassword); err != nil {
		return res, errors.Wrap(err, "hashing admin password")
	}
	if err = admins.Create(ctx, &adm); err != nil {
		return res, errors.Wrap(err, "creating default admin")
	}
	res.AdminCreated = true
	logger.Info("seed: default admin created", map[string]interface{}{"email": adm.Email})

	if n, err = trainers.Count(ctx); err != nil {
		return res, errors.Wrap(err, "counting trainers")
	}
	if n > 0 {
		return res, nil
	}

	tr := trainer.Trainer{
		Name:    accounts.TrainerName,
		Surname: accounts.TrainerSurname,
		Email:   core.CleanString(accounts.TrainerEmail, true /* lower */),
		Phone:   accounts.TrainerPhone,
	}
	if err = tr.SetPassword(accounts.TrainerPassword); err != nil {
		return res, errors.Wrap(err, "hashing trainer password")
	}
	if err = trainers.Create(ctx, &tr); err != nil {
		return res, errors.Wrap(err, "creating default trainer")
	}
	res.TrainerCreated = true
	logger.Info("seed: default trainer created", map[string]interface{}{"email": tr.Email})
	return res, nil
}
