// cmd/server/main.go
package main

import (
	"log"
	"os"

	"github.com/Corphon/MagicStudio/internal/app"
	"github.com/Corphon/MagicStudio/internal/config"
	apperrors "github.com/Corphon/MagicStudio/internal/errors"
	"github.com/Corphon/MagicStudio/internal/utils"
)

func main() {
	log.Println("🎨 Starting MagicStudio...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		if apperrors.IsAuthMissing(err) {
			log.Printf("❌ %v", err)
			log.Println("Set GOOGLE_API_KEY (or GEMINI_API_KEY / OPENAI_API_KEY), or DEMO_MODE=true to run offline.")
			os.Exit(1)
		}
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("%v", err)
	}
	if err := utils.InitLogger(cfg.LogFile()); err != nil {
		log.Printf("⚠️ structured log file unavailable, logging to stdout: %v", err)
	}
	if cfg.DebugMode {
		utils.GetLogger().SetLogLevel(utils.DEBUG)
	}

	studio, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize services: %v", err)
	}
	defer studio.Close()

	log.Printf("🌐 http://localhost:%s", cfg.Port)
	log.Printf("🔒 parents' corner: http://localhost:%s/parents", cfg.Port)
	if cfg.DemoMode {
		log.Println("🧪 demo mode: offline mock providers are active")
	}

	if err := studio.Run(); err != nil {
		log.Printf("❌ %v", err)
		studio.Close()
		os.Exit(1)
	}
	log.Println("✅ MagicStudio stopped")
}
