package main

import (
	"context"
)

func (cli *commandLine) seed() error {
	res, err := cli.c.Seed(context.Background())
	if err != nil {
		return err
	}
	if !res.AdminCreated {
		cli.printf("accounts already exist, nothing to seed\n")
		return nil
	}
	cli.printf("default admin created: %s\n", cli.c.Conf.Seed.AdminEmail)
	if res.TrainerCreated {
		cli.printf("default trainer created: %s\n", cli.c.Conf.Seed.TrainerEmail)
	}
	return nil
}
