package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func reloadCmd() *cli.Command {
	var rf reloadFlags

	return &cli.Command{
		Name:  "reload",
		Usage: "Hot reload a running Flutter app through its Dart VM service",
		Flags: rf.flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rf.apply(cmd, configFrom(ctx))
			return rf.run(ctx, stdout(cmd))
		},
	}
}
