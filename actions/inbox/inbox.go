// Package inbox holds the check-inbox triage command.
package inbox

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/uthapjhojho/graphmail/internal/app"
	"github.com/uthapjhojho/graphmail/internal/triage"
)

// CheckInboxCommand fetches unread inbox mail, marks it read and reports
// only the messages worth a human's attention.
var CheckInboxCommand = &cli.Command{
	Name:  "check-inbox",
	Usage: "Mark unread inbox mail read and report the non-noise subset",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Value:   10,
			Usage:   "Maximum number of unread messages to process",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging on stderr",
		},
	},
	Action: checkInboxAction,
}

func checkInboxAction(ctx context.Context, cmd *cli.Command) error {
	env, err := app.Setup(cmd.Bool("verbose"))
	if err != nil {
		app.EmitError(err)
		return cli.Exit("", 1)
	}

	workflow := triage.NewWorkflow(
		env.Client,
		triage.NewClassifier(env.Config.OwnerAddress),
		env.Logger,
	)

	report, err := workflow.CheckInbox(ctx, int(cmd.Int("top")))
	if err != nil {
		app.EmitError(err)
		return cli.Exit("", 1)
	}
	return app.Emit(report)
}
