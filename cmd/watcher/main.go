package main

import (
	"github.com/joho/godotenv"

	"seatwatch/pkg/app"
	"seatwatch/pkg/config"
)

const ServiceName = "watcher"

func main() {
	_ = godotenv.Load()
	cfg := config.Load(ServiceName)
	if cfg.UserID == "" {
		cfg.Log.Fatal("USER_ID must be set")
	}

	cfg.Log.Info("Starting course watcher")
	app.New(cfg).Run()
}
