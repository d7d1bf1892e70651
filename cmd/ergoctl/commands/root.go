package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ergo/ergo/api/internal/domain"
	"github.com/ergo/ergo/api/internal/pkg/logger"
)

// Version is set at build time
var Version = "0.1.0"

// options holds the global flags
type options struct {
	host    string
	verbose bool
}

// Execute runs the CLI
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ergoctl",
		Short: "Evaluate ergo counter operations",
		Long: `ergoctl runs the ergo counter operations either in-process or
against a running server.

Example:
  ergoctl eval 42 7
  ergoctl eval 1337 --body 'count: 24'
  ergoctl send 42 7 --host http://127.0.0.1:8080`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.host, "host", "http://127.0.0.1:8080", "ergo server base URL")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(evalCmd(opts), sendCmd(opts))
	return root
}

// newLogger returns a console logger on stderr in verbose mode
func (o *options) newLogger(w io.Writer) *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	if w == nil {
		w = os.Stderr
	}
	return logger.New(logger.Config{Level: "debug", Format: "console", Output: w})
}

// requestBody resolves the YAML document for a command from either the
// count argument or the --body flag.
func requestBody(args []string, body string, bodySet bool) ([]byte, error) {
	switch {
	case len(args) == 2 && bodySet:
		return nil, fmt.Errorf("pass either a count or --body, not both")
	case len(args) == 2:
		n, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid count %q: must be an unsigned integer", args[1])
		}
		return []byte("count: " + strconv.FormatUint(n, 10) + "\n"), nil
	case bodySet:
		return []byte(body), nil
	default:
		return nil, fmt.Errorf("a count or --body is required")
	}
}

// parseArgs resolves the operation and request body
func parseArgs(cmd *cobra.Command, args []string, body string) (domain.Operation, []byte, error) {
	op, err := domain.ParseOperation(args[0])
	if err != nil {
		return "", nil, err
	}

	raw, err := requestBody(args, body, cmd.Flags().Changed("body"))
	if err != nil {
		return "", nil, err
	}
	return op, raw, nil
}

// printResponse writes the status line and body
func printResponse(w io.Writer, status int, body string) {
	fmt.Fprintf(w, "%d %s\n%s\n", status, statusText(status), body)
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Unknown"
}
