package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/presence/core/admin"
	"github.com/trezcool/presence/core/trainer"
)

// resetPassword sets the password of the admin, or else the trainer, using `email`.
// Trainer passwords go through the trainer password policy.
func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()

	adm, err := cli.c.Admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if _, err = cli.c.Admins.Update(ctx, adm.ID, admin.UpdateAdmin{Password: pwd}); err != nil {
			return err
		}
		cli.printf("password of admin %s updated\n", adm.Email)
		return nil
	case !errors.Is(err, admin.ErrNotFound):
		return err
	}

	tr, err := cli.c.Trainers.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err = cli.c.Trainers.Update(ctx, tr.ID, trainer.UpdateTrainer{Password: pwd}); err != nil {
		return err
	}
	cli.printf("password of trainer %s updated\n", tr.Email)
	return nil
}
