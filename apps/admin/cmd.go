package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/presence/apps/container"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	c   *container.Container
	out io.Writer
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	cli.printf("  migrate up|down|status - apply, roll back or list the database migrations\n")
	cli.printf("  seed - create the default admin and trainer accounts if there are none\n")
	cli.printf("  settings [-start HH:mm] [-end HH:mm] - show or change the attendance window\n")
	cli.printf("  resetpassword -email EMAIL - reset an admin's or a trainer's password\n")
	cli.printf("  export -o FILE - write every table to a JSON file\n")
	cli.printf("  import -i FILE - replace every table with the content of a JSON export\n")
	cli.printf("  sync [-status] [-discard] - push the pending changes, show the sync status or drop the pending changes\n")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	settingsCmd := flag.NewFlagSet("settings", flag.ContinueOnError)
	settingsStart := settingsCmd.String("start", "", "Start of the attendance window (HH:mm).")
	settingsEnd := settingsCmd.String("end", "", "End of the attendance window (HH:mm).")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportFile := exportCmd.String("o", "", "The file to write the export to.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importFile := importCmd.String("i", "", "The export file to restore.")

	syncCmd := flag.NewFlagSet("sync", flag.ContinueOnError)
	syncStatus := syncCmd.Bool("status", false, "Only show the sync status.")
	syncDiscard := syncCmd.Bool("discard", false, "Drop the pending changes without pushing them.")

	for _, fs := range []*flag.FlagSet{settingsCmd, resetPasswordCmd, exportCmd, importCmd, syncCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])

	case "seed":
		return cli.seed()

	case "settings":
		if err := settingsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.settings(*settingsStart, *settingsEnd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		cli.printf("Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		cli.printf("\n")
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, string(pwd))

	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *exportFile == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportData(*exportFile)

	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importData(*importFile)

	case "sync":
		if err := syncCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.sync(*syncStatus, *syncDiscard)

	default:
		cli.printUsage()
		return errHelp
	}
}
