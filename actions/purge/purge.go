// Package purge holds the delete-by-filter command.
package purge

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/uthapjhojho/graphmail/internal/app"
	"github.com/uthapjhojho/graphmail/internal/validate"
)

// PurgeCommand searches by OData filter and permanently deletes every match,
// up to a cap.
var PurgeCommand = &cli.Command{
	Name:      "purge",
	Usage:     "Delete every message matching an OData filter",
	ArgsUsage: "<filter>",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "max",
			Aliases: []string{"m"},
			Value:   50,
			Usage:   "Maximum number of messages to delete",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging on stderr",
		},
	},
	Action: purgeAction,
}

func purgeAction(ctx context.Context, cmd *cli.Command) error {
	filter, err := validate.Filter(cmd.Args().First())
	if err != nil {
		app.EmitError(err)
		return cli.Exit("", 1)
	}
	if filter == "" {
		app.EmitError(validate.ErrInvalidFilter)
		return cli.Exit("", 1)
	}

	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		app.EmitError(err)
		return cli.Exit("", 1)
	}

	reporter := newCLIReporter()
	deleted, err := env.Client.DeleteByFilter(ctx, filter, int(cmd.Int("max")), reporter)
	reporter.Wait()

	if err != nil {
		app.EmitError(err)
		return cli.Exit("", 1)
	}
	return app.Emit(map[string]int{"deleted": deleted})
}
