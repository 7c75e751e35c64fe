package main

import (
	"context"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/presence/services/backup"
)

func (cli *commandLine) exportData(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = errors.Wrap(cErr, "closing export file")
		}
	}()

	snap, err := cli.c.Backup.WriteJSON(context.Background(), f)
	if err != nil {
		return err
	}
	cli.printCounts("exported", snap)
	return nil
}

func (cli *commandLine) importData(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening export file")
	}
	defer func() { _ = f.Close() }()

	snap, err := backup.ReadJSON(f)
	if err != nil {
		return err
	}
	if err = cli.c.Backup.Import(context.Background(), snap); err != nil {
		return err
	}
	cli.printCounts("imported", snap)
	return nil
}

func (cli *commandLine) printCounts(verb string, snap backup.Snapshot) {
	counts := snap.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cli.printf("%s %d %s\n", verb, counts[name], name)
	}
}
