package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/tokenbot/internal/bot"
	"github.com/dmitrijs2005/tokenbot/internal/bot/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := bot.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
