package main

import (
	"context"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/okian/spadl/internal/adapters/repository"
	service "github.com/okian/spadl/internal/app"
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/registry"
	"github.com/okian/spadl/internal/domain/schema"
	"github.com/okian/spadl/pkg/logger"
)

type gameFlags struct {
	events      string
	gameID      string
	homeTeamID  string
	fieldLength float64
	fieldWidth  float64
	bodyPart    string
	noDribbles  bool
}

func (f *gameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.events, "events", "", "StatsBomb events file (JSON array); - reads stdin")
	cmd.Flags().StringVar(&f.gameID, "game-id", "", "Game identifier")
	cmd.Flags().StringVar(&f.homeTeamID, "home-team-id", "", "Identifier of the home team")
	cmd.Flags().Float64Var(&f.fieldLength, "field-length", 105, "Canonical pitch length in metres")
	cmd.Flags().Float64Var(&f.fieldWidth, "field-width", 68, "Canonical pitch width in metres")
	cmd.Flags().StringVar(&f.bodyPart, "default-bodypart", registry.Foot, "Body part for events without one")
	cmd.Flags().BoolVar(&f.noDribbles, "no-dribbles", false, "Do not insert synthetic dribbles")
	_ = cmd.MarkFlagRequired("events")
	_ = cmd.MarkFlagRequired("game-id")
}

// run converts the game described by the flags in-process.
func (f *gameFlags) run(ctx context.Context, in io.Reader) (repository.Result, error) {
	payload, err := readInput(f.events, in)
	if err != nil {
		return repository.Result{}, err
	}
	svc := service.New(
		service.WithLogger(logger.Named("spadl")),
		service.WithPitch(f.fieldLength, f.fieldWidth),
		service.WithDefaultBodyPart(f.bodyPart),
		service.WithDribbles(!f.noDribbles),
	)
	return svc.ConvertGame(ctx, model.Job{
		Game:     model.Game{GameID: f.gameID, HomeTeamID: f.homeTeamID},
		Provider: service.ProviderStatsBomb,
		Payload:  payload,
	})
}

func convertCmd(root *rootFlags) *cobra.Command {
	flags := &gameFlags{}
	var withNames bool
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one game's events to SPADL actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := initLogging(root); err != nil {
				return err
			}
			res, err := flags.run(cmd.Context(), cmd.InOrStdin())
			if err != nil {
				return err
			}
			if !withNames {
				for i := range res.Actions {
					res.Actions[i].TypeName, res.Actions[i].ResultName, res.Actions[i].BodyPartName = "", "", ""
				}
			}
			return writeJSON(cmd.OutOrStdout(), res.Actions)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&withNames, "names", true, "Include type, result and body part names")
	return cmd
}

func minutesCmd(root *rootFlags) *cobra.Command {
	flags := &gameFlags{}
	cmd := &cobra.Command{
		Use:   "minutes",
		Short: "Extract minutes played per player for one game",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := initLogging(root); err != nil {
				return err
			}
			res, err := flags.run(cmd.Context(), cmd.InOrStdin())
			if res.MinutesError != "" {
				return errors.Newf("game %s: %s", flags.gameID, res.MinutesError)
			}
			// a failed action conversion still yields minutes
			if err != nil && res.PlayerGames == nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res.PlayerGames)
		},
	}
	flags.register(cmd)
	return cmd
}

func validateCmd(root *rootFlags) *cobra.Command {
	var actions string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate action rows against the SPADL action contract",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := initLogging(root); err != nil {
				return err
			}
			payload, err := readInput(actions, cmd.InOrStdin())
			if err != nil {
				return err
			}
			var rows []schema.Row
			if err := sonic.Unmarshal(payload, &rows); err != nil {
				return errors.Wrap(err, "decode action rows")
			}
			svc := service.New(service.WithLogger(logger.Named("spadl")))
			if _, err := svc.Validate(rows); err != nil {
				var v *schema.Violation
				if errors.As(err, &v) {
					_ = writeJSON(cmd.OutOrStdout(), v.Failures)
				}
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte("ok\n"))
			return err
		},
	}
	cmd.Flags().StringVar(&actions, "actions", "", "Action rows file (JSON array); - reads stdin")
	_ = cmd.MarkFlagRequired("actions")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return b, errors.Wrap(err, "read stdin")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return b, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigDefault.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode output")
}
