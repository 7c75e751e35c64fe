package main

import (
	"context"
)

func (cli *commandLine) sync(statusOnly, discard bool) error {
	ctx := context.Background()
	switch {
	case discard:
		n, err := cli.c.Sync.Discard(ctx)
		if err != nil {
			return err
		}
		cli.printf("discarded %d changes\n", n)
	case !statusOnly:
		res, err := cli.c.Sync.Push(ctx, cli.c.Sender())
		if err != nil {
			return err
		}
		cli.printf("pushed %d changes in %d batches\n", res.Changes, res.Batches)
	}

	st, err := cli.c.Sync.Status(ctx)
	if err != nil {
		return err
	}
	last := "never"
	if !st.LastPush.IsZero() {
		last = st.LastPush.Format("2006-01-02 15:04:05")
	}
	cli.printf("pending changes: %d, last push: %s\n", st.Pending, last)
	return nil
}
