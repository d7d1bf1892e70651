package commands

import (
	"github.com/spf13/cobra"

	"github.com/ergo/ergo/api/internal/codec"
	"github.com/ergo/ergo/api/internal/service"
)

// eval <op> [count]: run an operation in-process.
func evalCmd(opts *options) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "eval <op> [count]",
		Short: "Run an operation locally and print the response",
		Long: `Run the full request pipeline in-process: decode, evaluate,
encode, and translate failures to the same status and body the server
would answer with.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, raw, err := parseArgs(cmd, args, body)
			if err != nil {
				return err
			}

			svc := service.NewCounterService(
				codec.NewYAMLDecoder(),
				codec.NewJSONEncoder(),
				opts.newLogger(cmd.ErrOrStderr()),
			)

			resp := svc.Respond(cmd.Context(), op, raw)
			printResponse(cmd.OutOrStdout(), resp.Status, resp.Body)
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "raw YAML request body instead of a count")
	return cmd
}
