package main

import (
	"flag"

	"github.com/df-mc/dragonfly/server/player/chat"
	"github.com/smell-of-curry/servers-info-track/tracker"
)

// init ...
func init() {
	chat.Global.Subscribe(chat.StdoutSubscriber{})
}

// main ...
func main() {
	configPath := flag.String("config", "./config.toml", "path of the config file")
	setup := flag.Bool("setup", false, "ask for the database settings if the config file does not exist yet")
	flag.Parse()

	conf, err := tracker.ReadConfig(*configPath, *setup)
	if err != nil {
		panic(err)
	}

	log, closer, err := tracker.NewLogger(conf)
	if err != nil {
		log.Warn("falling back to info log level", "error", err)
	}
	defer closer.Close()

	t, err := tracker.NewTracker(log, conf)
	if err != nil {
		panic(err)
	}

	t.Start()
}
