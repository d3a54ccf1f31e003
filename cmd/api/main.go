package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/Montabos/Quantis/pkg/api/config"
	"github.com/Montabos/Quantis/pkg/api/decision"
	"github.com/Montabos/Quantis/pkg/core/agent"
	"github.com/Montabos/Quantis/pkg/core/analysis"
	"github.com/Montabos/Quantis/pkg/core/llm"
	"github.com/Montabos/Quantis/pkg/core/prompt"
	"github.com/Montabos/Quantis/pkg/core/store"
	"github.com/Montabos/Quantis/pkg/core/structure"
)

var agentMgr *agent.Manager

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize Prompt Library
	// Determine resources path (relative to executable or working directory)
	resourcesPath := "resources"
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		// Try from executable directory
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath); err != nil {
		fmt.Printf("[WARNING] Failed to load prompt overrides: %v\n", err)
		fmt.Println("  Falling back to built-in prompts")
	} else {
		fmt.Printf("[PROMPT] Loaded %d prompts from %s\n", prompt.Get().Count(), resourcesPath)
	}

	// Initialize manager from config
	configData, _ := ioutil.ReadFile("config/agents.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr = agent.NewManager(agentCfg)

	// Report storage is optional: runs still work without a database, they
	// just aren't persisted.
	var repo *store.ReportRepo
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database unavailable, reports will not be persisted: %v\n", err)
		} else {
			repo = store.NewReportRepo()
			defer store.Close()
		}
	}

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Decision analysis endpoints
	provider := agentMgr.GetProvider("analysis")
	executor := llm.NewCodeExecService(os.Getenv("CODEEXEC_MODEL"))
	orchestrator := analysis.NewOrchestrator(provider, executor)
	if webhook := os.Getenv("STATUS_WEBHOOK_URL"); webhook != "" {
		orchestrator.WithNotifier(analysis.NewNotifier(webhook))
	}
	decisionHandler := decision.NewHandler(orchestrator, structure.NewNegotiator(provider), repo)
	http.HandleFunc("/api/analyze", decisionHandler.HandleAnalyze)
	http.HandleFunc("/api/availability", decisionHandler.HandleAvailability)
	http.HandleFunc("/api/structure", decisionHandler.HandleStructure)
	http.HandleFunc("/api/profile", decisionHandler.HandleProfile)
	http.HandleFunc("/api/report", decisionHandler.HandleReport)
	http.HandleFunc("/api/reports", decisionHandler.HandleReports)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - POST /api/analyze")
	fmt.Println("  - POST /api/availability")
	fmt.Println("  - POST /api/structure")
	fmt.Println("  - POST /api/profile  (multipart CSV upload)")
	fmt.Println("  - GET  /api/report?run_id=...")
	fmt.Println("  - GET  /api/reports")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
