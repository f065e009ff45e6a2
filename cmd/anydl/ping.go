package main

import (
	"context"
	"fmt"

	"github.com/jmagar/anydl/internal/ui"
)

func (a *app) ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		ui.PrintFailure(fmt.Sprintf("Backend at %s is unreachable: %v", a.client.BaseURL, err),
			"Start the backend server and check serverUrl in your config.")
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Backend at %s is up", a.client.BaseURL))
	return nil
}
