package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	BotToken    string
	AdminChatID int64
	DataFile    string
	PublicDir   string
	UploadDir   string
	LogFile     string
}

// Load reads the environment. Missing transport credentials abort startup.
func Load() Config {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	adminRaw := os.Getenv("TELEGRAM_ADMIN_CHAT_ID")
	if token == "" || adminRaw == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_ADMIN_CHAT_ID must be set")
	}
	adminID, err := strconv.ParseInt(adminRaw, 10, 64)
	if err != nil {
		log.Fatalf("TELEGRAM_ADMIN_CHAT_ID must be a numeric chat id: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "data.json"
	}
	publicDir := os.Getenv("PUBLIC_DIR")
	if publicDir == "" {
		publicDir = "./public"
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	cfg := Config{
		Port:        port,
		BotToken:    token,
		AdminChatID: adminID,
		DataFile:    dataFile,
		PublicDir:   publicDir,
		UploadDir:   uploadDir,
		LogFile:     os.Getenv("LOG_FILE"),
	}
	log.Printf("[config] PORT=%s DATA_FILE=%s PUBLIC_DIR=%s UPLOAD_DIR=%s", cfg.Port, cfg.DataFile, cfg.PublicDir, cfg.UploadDir)
	return cfg
}
