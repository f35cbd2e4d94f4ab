package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/dzx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the catalog
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	params, err := parseQuery(cmd.StringSlice("query"))
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path, params)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if catalogErr := resp.CatalogError(); catalogErr != nil {
		r.logger.Warn("catalog returned an error", "type", catalogErr.Type, "code", catalogErr.Code)
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !cmd.Bool("json"))
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// parseQuery turns key=value pairs into query parameters.
func parseQuery(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: query %q must be key=value", shared.ErrInvalidArgument, pair)
		}
		params.Add(k, v)
	}
	return params, nil
}
