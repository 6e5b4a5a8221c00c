//go:build js && wasm

package main

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"

	"finitefield.org/heara-web/internal/api"
	"finitefield.org/heara-web/internal/dom/jsdom"
	"finitefield.org/heara-web/internal/platform/observability"
	"finitefield.org/heara-web/internal/site"
)

func main() {
	logger := observability.NewConsoleLogger(os.Stdout, "info").Named("site")

	client, err := api.NewClient(jsdom.Origin(), http.DefaultClient)
	if err != nil {
		logger.Error("api client unavailable", zap.Error(err))
		return
	}

	rt := site.Runtime{
		Doc:     jsdom.New(),
		Logger:  logger,
		Spawn:   site.Goroutine,
		Context: context.Background(),
	}
	site.Start(rt, site.Dependencies{
		Products: client,
		Leads:    client,
		Admin:    client,
	})

	// Listeners call back into Go; the program must stay alive.
	select {}
}
