package main

import (
	"context"

	"github.com/trezcool/presence/core/settings"
)

// settings prints the attendance window, after changing it when `start` or `end` is given.
func (cli *commandLine) settings(start, end string) error {
	ctx := context.Background()
	current, err := cli.c.Settings.Get(ctx)
	if err != nil {
		return err
	}
	if start != "" || end != "" {
		us := settings.UpdateSettings{PresenceStartTime: start, PresenceEndTime: end}
		if err = us.Validate(current); err != nil {
			return err
		}
		if current, err = cli.c.Settings.Set(ctx, us); err != nil {
			return err
		}
	}
	cli.printf("attendance window: %s - %s\n", current.PresenceStartTime, current.PresenceEndTime)
	return nil
}
