// Package mail holds the single-message subcommands: list, search, get,
// send, mark-read, mark-unread, delete and list-folders. Every command
// prints one JSON document on stdout and exits non-zero on reported failure.
package mail

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/uthapjhojho/graphmail/internal/app"
	"github.com/uthapjhojho/graphmail/internal/platform/graph"
	"github.com/uthapjhojho/graphmail/internal/validate"
)

var verboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"v"},
	Usage:   "Enable debug logging on stderr",
}

// ListCommand lists messages from one folder, newest first.
var ListCommand = &cli.Command{
	Name:  "list",
	Usage: "List messages in a folder",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "folder",
			Aliases: []string{"f"},
			Value:   "inbox",
			Usage:   "Folder name (inbox, sent, drafts, junk, deleted, archive, or a folder ID)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Value:   20,
			Usage:   "Maximum number of messages",
		},
		&cli.StringFlag{
			Name:  "filter",
			Usage: "OData filter expression",
		},
		&cli.BoolFlag{
			Name:    "unread",
			Aliases: []string{"u"},
			Usage:   "Only unread messages",
		},
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   "Follow pagination and fetch every page",
		},
		verboseFlag,
	},
	Action: listAction,
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	folder, err := validate.Folder(validate.NormalizeFolder(cmd.String("folder")))
	if err != nil {
		return failInput(err)
	}

	filter := cmd.String("filter")
	if filter != "" {
		if filter, err = validate.Filter(filter); err != nil {
			return failInput(err)
		}
	}

	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		return failInput(err)
	}

	opts := graph.ListOptions{
		Folder:     folder,
		Top:        int(cmd.Int("top")),
		Filter:     filter,
		UnreadOnly: cmd.Bool("unread"),
	}

	if cmd.Bool("all") {
		return listAll(ctx, env, opts)
	}

	emails, err := env.Client.ListEmails(ctx, opts)
	if err != nil {
		return failInput(err)
	}
	return app.Emit(map[string]any{"count": len(emails), "emails": emails})
}

// listAll walks every page of the folder through the paginator instead of
// taking a single page.
func listAll(ctx context.Context, env *app.Env, opts graph.ListOptions) error {
	top := opts.Top
	if top <= 0 {
		top = 20
	}

	params := url.Values{}
	params.Set("$top", strconv.Itoa(top))
	params.Set("$select", "id,subject,from,receivedDateTime,isRead,bodyPreview")
	params.Set("$orderby", "receivedDateTime desc")

	var filters []string
	if opts.Filter != "" {
		filters = append(filters, opts.Filter)
	}
	if opts.UnreadOnly {
		filters = append(filters, "isRead eq false")
	}
	if len(filters) > 0 {
		params.Set("$filter", strings.Join(filters, " and "))
	}

	collectionURL := graph.BaseURL + "/me/mailFolders/" + url.PathEscape(opts.Folder) + "/messages"

	emails := []graph.Message{}
	for raw := range env.Client.Paginate(ctx, collectionURL, params) {
		var msg graph.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			env.Logger.Warn("skipping undecodable message")
			continue
		}
		emails = append(emails, msg)
	}
	return app.Emit(map[string]any{"count": len(emails), "emails": emails})
}

// SearchCommand runs an OData filter across the whole mailbox.
var SearchCommand = &cli.Command{
	Name:      "search",
	Usage:     "Search all messages with an OData filter",
	ArgsUsage: "<filter>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Value:   20,
			Usage:   "Maximum number of results",
		},
		verboseFlag,
	},
	Action: searchAction,
}

func searchAction(ctx context.Context, cmd *cli.Command) error {
	filter, err := validate.Filter(cmd.Args().First())
	if err != nil {
		return failInput(err)
	}
	if filter == "" {
		return failInput(validate.ErrInvalidFilter)
	}

	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		return failInput(err)
	}

	emails, err := env.Client.SearchEmails(ctx, filter, int(cmd.Int("top")), nil)
	if err != nil {
		return failInput(err)
	}
	return app.Emit(map[string]any{"count": len(emails), "emails": emails})
}

// GetCommand fetches one message with its full body.
var GetCommand = &cli.Command{
	Name:      "get",
	Usage:     "Fetch one message, including its body",
	ArgsUsage: "<message-id>",
	Flags:     []cli.Flag{verboseFlag},
	Action:    getAction,
}

func getAction(ctx context.Context, cmd *cli.Command) error {
	id, err := validate.MessageID(cmd.Args().First())
	if err != nil {
		return failInput(err)
	}

	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		return failInput(err)
	}

	msg, err := env.Client.GetEmail(ctx, id)
	if err != nil {
		return failInput(err)
	}
	if msg == nil {
		return failInput(errMessageUnavailable)
	}
	return app.Emit(msg)
}

// SendCommand sends a message.
var SendCommand = &cli.Command{
	Name:  "send",
	Usage: "Send a message",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "to",
			Usage:    "Recipient addresses, comma separated",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "cc",
			Usage: "Cc addresses, comma separated",
		},
		&cli.StringFlag{
			Name:  "bcc",
			Usage: "Bcc addresses, comma separated",
		},
		&cli.StringFlag{
			Name:    "subject",
			Aliases: []string{"s"},
			Usage:   "Message subject",
		},
		&cli.StringFlag{
			Name:    "body",
			Aliases: []string{"b"},
			Usage:   "Message body",
		},
		&cli.BoolFlag{
			Name:  "html",
			Usage: "Send the body as HTML instead of plain text",
		},
		verboseFlag,
	},
	Action: sendAction,
}

func sendAction(ctx context.Context, cmd *cli.Command) error {
	to, err := validate.Recipients(cmd.String("to"), "to")
	if err != nil {
		return failInput(err)
	}

	cc := cmd.String("cc")
	if cc != "" {
		if cc, err = validate.Recipients(cc, "cc"); err != nil {
			return failInput(err)
		}
	}
	bcc := cmd.String("bcc")
	if bcc != "" {
		if bcc, err = validate.Recipients(bcc, "bcc"); err != nil {
			return failInput(err)
		}
	}

	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		return failInput(err)
	}

	draft := graph.Draft{
		To:      []string{to},
		Subject: cmd.String("subject"),
		Body:    cmd.String("body"),
		HTML:    cmd.Bool("html"),
	}
	if cc != "" {
		draft.Cc = []string{cc}
	}
	if bcc != "" {
		draft.Bcc = []string{bcc}
	}

	sent, err := env.Client.SendEmail(ctx, draft)
	if err != nil {
		return failInput(err)
	}
	if emitErr := app.Emit(map[string]bool{"sent": sent}); emitErr != nil {
		return emitErr
	}
	if !sent {
		return cli.Exit("", 1)
	}
	return nil
}

// MarkReadCommand marks one message read.
var MarkReadCommand = &cli.Command{
	Name:      "mark-read",
	Usage:     "Mark a message as read",
	ArgsUsage: "<message-id>",
	Flags:     []cli.Flag{verboseFlag},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return markAction(ctx, cmd, true)
	},
}

// MarkUnreadCommand marks one message unread.
var MarkUnreadCommand = &cli.Command{
	Name:      "mark-unread",
	Usage:     "Mark a message as unread",
	ArgsUsage: "<message-id>",
	Flags:     []cli.Flag{verboseFlag},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return markAction(ctx, cmd, false)
	},
}

func markAction(ctx context.Context, cmd *cli.Command, read bool) error {
	id, err := validate.MessageID(cmd.Args().First())
	if err != nil {
		return failInput(err)
	}

	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		return failInput(err)
	}

	var ok bool
	if read {
		ok, err = env.Client.MarkAsRead(ctx, id)
	} else {
		ok, err = env.Client.MarkAsUnread(ctx, id)
	}
	if err != nil {
		return failInput(err)
	}
	if emitErr := app.Emit(map[string]bool{"marked": ok, "read": read}); emitErr != nil {
		return emitErr
	}
	if !ok {
		return cli.Exit("", 1)
	}
	return nil
}

// DeleteCommand permanently deletes one message.
var DeleteCommand = &cli.Command{
	Name:      "delete",
	Usage:     "Permanently delete a message",
	ArgsUsage: "<message-id>",
	Flags:     []cli.Flag{verboseFlag},
	Action:    deleteAction,
}

func deleteAction(ctx context.Context, cmd *cli.Command) error {
	id, err := validate.MessageID(cmd.Args().First())
	if err != nil {
		return failInput(err)
	}

	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		return failInput(err)
	}

	deleted, err := env.Client.DeleteEmail(ctx, id)
	if err != nil {
		return failInput(err)
	}
	if emitErr := app.Emit(map[string]bool{"deleted": deleted}); emitErr != nil {
		return emitErr
	}
	if !deleted {
		return cli.Exit("", 1)
	}
	return nil
}

// FoldersCommand lists the mailbox's folders.
var FoldersCommand = &cli.Command{
	Name:   "list-folders",
	Usage:  "List mail folders with message counters",
	Flags:  []cli.Flag{verboseFlag},
	Action: foldersAction,
}

func foldersAction(ctx context.Context, cmd *cli.Command) error {
	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		return failInput(err)
	}

	folders, err := env.Client.ListFolders(ctx)
	if err != nil {
		return failInput(err)
	}
	return app.Emit(map[string]any{"count": len(folders), "folders": folders})
}

var errMessageUnavailable = errors.New("message not found or not retrievable")

// failInput reports err as the command's JSON document and forces a non-zero
// exit without duplicating the message on stderr.
func failInput(err error) error {
	app.EmitError(err)
	return cli.Exit("", 1)
}
