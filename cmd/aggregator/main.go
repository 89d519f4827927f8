package main

import (
	"context"
	"time"

	"github.com/pierregarcia1/construction-aggregator/config"
	"github.com/pierregarcia1/construction-aggregator/internal/app"
	"github.com/pierregarcia1/construction-aggregator/pkg/sigctx"
)

const closeTimeout = 10 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	aggregator := app.New(sigCtx, cfg)

	aggregator.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	aggregator.Close(ctx)
}
