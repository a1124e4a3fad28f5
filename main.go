package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/uthapjhojho/graphmail/actions/configure"
	"github.com/uthapjhojho/graphmail/actions/inbox"
	"github.com/uthapjhojho/graphmail/actions/mail"
	"github.com/uthapjhojho/graphmail/actions/purge"
)

func main() {
	cmd := &cli.Command{
		Name:    "graphmail",
		Usage:   "Microsoft Graph mailbox CLI",
		Version: "0.1.0",
		Action: func(context.Context, *cli.Command) error {
			fmt.Println("graphmail - Use 'graphmail help' for available commands")
			return nil
		},
		Commands: []*cli.Command{
			mail.ListCommand,
			mail.SearchCommand,
			mail.GetCommand,
			mail.SendCommand,
			mail.MarkReadCommand,
			mail.MarkUnreadCommand,
			mail.DeleteCommand,
			mail.FoldersCommand,
			inbox.CheckInboxCommand,
			purge.PurgeCommand,
			configure.ConfigureCommand,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
