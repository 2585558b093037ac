package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/authlab/members/internal/infrastructure/queue"
)

func hashPasswordCmd() *cli.Command {
	var cost int
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print the bcrypt hash of a password, for seeding the credential store",
		ArgsUsage: "<password>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "cost",
				Usage:       "bcrypt work factor",
				Value:       queue.DefaultCost,
				Destination: &cost,
			},
		},
		Action: func(ctx *cli.Context) error {
			password := ctx.Args().First()
			if password == "" {
				return errors.New("missing password argument")
			}

			pool, err := queue.NewHashPool(1, cost, zerolog.Nop())
			if err != nil {
				return err
			}
			pool.Start(ctx.Context)
			defer pool.Stop()

			hash, err := pool.Hash(ctx.Context, password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(ctx.App.Writer, hash)
			return err
		},
	}
}
