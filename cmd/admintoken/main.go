package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/tokenbot/internal/bot/admintoken"
	"github.com/dmitrijs2005/tokenbot/internal/bot/config"
	"github.com/dmitrijs2005/tokenbot/internal/bot/services"
	"github.com/dmitrijs2005/tokenbot/internal/flagx"
)

func main() {

	cfg := config.LoadConfig()

	fs := flag.NewFlagSet("admintoken", flag.ContinueOnError)
	hours := fs.Int("x", 24, "token validity (in hours)")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-x"})); err != nil {
		log.Fatalf("%v", err)
	}

	err := admintoken.Run(bufio.NewReader(os.Stdin), os.Stdout, services.NewAllowList(cfg.AdminIDs),
		cfg.JWTSecret, time.Duration(*hours)*time.Hour)
	if err != nil {
		log.Fatalf("%v", err)
	}

}
