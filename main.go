package main

import (
	"embed"
	"log"

	"preview-studio/internal/bootstrap"
	"preview-studio/internal/config"
)

//go:embed all:frontend
var appAssets embed.FS

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	app, err := bootstrap.NewWithAssets(appAssets)
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
