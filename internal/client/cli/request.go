package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/carelink/internal/client/auth"
)

func (c *Cli) requestCommand() *cobra.Command {
	var data string
	var headers []string

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send an authenticated request and print the response",
		Long: "Send an authenticated request and print the response.\n\n" +
			"The access token is renewed before the request when it is about to expire, " +
			"and once more if the server answers 401.",
		Example: "  carelink request GET /account/profile/\n" +
			"  carelink request POST /records/ --data '{\"note\":\"bp 120/80\"}'",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRequest(cmd.Context(), args[0], args[1], data, headers)
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header as 'Name: value' (repeatable)")

	return cmd
}

func (c *Cli) runRequest(ctx context.Context, method, path, data string, headers []string) error {
	req := auth.Request{
		Method: strings.ToUpper(method),
		URL:    path,
		Header: http.Header{},
	}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	if data != "" {
		req.Body = []byte(data)
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
	}

	resp, err := c.session.Do(ctx, req)
	if err != nil {
		if errors.Is(err, auth.ErrNoRefreshToken) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("request failed: %w", describeStorageError(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.io.Printf("%s %s\n", resp.Proto, resp.Status)
	if _, err := io.Copy(c.io, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	c.io.Println()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
