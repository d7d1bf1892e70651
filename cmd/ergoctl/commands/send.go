package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// send <op> [count]: POST an operation to a running server.
func sendCmd(opts *options) *cobra.Command {
	var (
		body    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send <op> [count]",
		Short: "POST an operation to a server and print the response",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, raw, err := parseArgs(cmd, args, body)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			url := strings.TrimRight(opts.host, "/") + op.Path()
			log := opts.newLogger(cmd.ErrOrStderr())
			log.Debug("sending request", zap.String("url", url), zap.ByteString("body", raw))

			client := &HTTPClient{HTTP: http.DefaultClient}
			status, respBody, err := client.Post(ctx, url, raw)
			if err != nil {
				return err
			}

			printResponse(cmd.OutOrStdout(), status, string(respBody))
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "raw YAML request body instead of a count")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}

// HTTPClient posts YAML documents to an ergo server
type HTTPClient struct {
	HTTP *http.Client
}

// Post sends raw to url and returns the status and body of the response
func (c *HTTPClient) Post(ctx context.Context, url string, raw []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/yaml")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, b, nil
}
