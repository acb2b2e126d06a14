package main

import (
	"net/http"
	"os"
	"strings"

	"learn2learn/config/database"
	"learn2learn/internal/airating"
	noteService "learn2learn/internal/note/service"
	"learn2learn/pkg/logger"
	"learn2learn/router"
	"learn2learn/socket"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}
	logger.Init()

	db := database.Connect()
	defer db.Close()

	// The hub fans out note/tag change events to connected clients.
	hub := socket.NewHub()
	go hub.Run()

	var rater noteService.Rater
	if apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); apiKey != "" {
		model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
		if model == "" {
			model = "gpt-4o-mini"
		}
		rater = airating.New(apiKey, model)
	} else {
		logger.Sugar.Warn("OPENAI_API_KEY not set; note rating is disabled")
	}

	handler := router.Setup(db, hub, rater)

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	logger.Sugar.Infof("Backend listening on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Sugar.Fatalf("Server stopped: %v", err)
	}
}
