package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Montabos/Quantis/pkg/core/analysis"
	"github.com/Montabos/Quantis/pkg/core/ingest"
	"github.com/Montabos/Quantis/pkg/core/llm"
	"github.com/Montabos/Quantis/pkg/models"
)

// Command-line runner for one analysis: profiles the given data files,
// runs the pipeline, and prints the report as JSON.
func main() {
	question := flag.String("question", "", "decision question to analyze")
	files := flag.String("files", "", "comma-separated CSV/HTML file paths")
	mode := flag.String("mode", "", "advisory | comprehensive | progressive (default: auto)")
	provider := flag.String("provider", "gemini", "gemini | deepseek")
	flag.Parse()

	if *question == "" {
		log.Fatal("Error: -question is required.")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var llmProvider llm.Provider
	switch *provider {
	case "deepseek":
		if os.Getenv("DEEPSEEK_API_KEY") == "" {
			log.Fatal("Error: DEEPSEEK_API_KEY is not set.")
		}
		llmProvider = &llm.DeepSeekProvider{}
	default:
		if os.Getenv("GEMINI_API_KEY") == "" {
			log.Fatal("Error: GEMINI_API_KEY is not set.")
		}
		llmProvider = &llm.GeminiProvider{}
	}

	var profiles []models.FileColumnProfile
	var paths []string
	if *files != "" {
		for i, path := range strings.Split(*files, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			paths = append(paths, path)
			if strings.ToLower(filepath.Ext(path)) != ".csv" {
				// Non-CSV inputs are converted at run time; no profile up front.
				continue
			}
			profile, err := ingest.ProfileCSVFile(fmt.Sprintf("f%d", i+1), path)
			if err != nil {
				log.Fatalf("Error: failed to profile %s: %v", path, err)
			}
			profiles = append(profiles, *profile)
			fmt.Printf("[CLI] profiled %s: %d columns, %d rows\n", path, len(profile.Columns), profile.NumRows)
		}
	}

	orchestrator := analysis.NewOrchestrator(llmProvider, llm.NewCodeExecService(os.Getenv("CODEEXEC_MODEL")))
	result, err := orchestrator.Analyze(context.Background(), analysis.Request{
		Question:  *question,
		Files:     profiles,
		FilePaths: paths,
		Mode:      *mode,
	})
	if err != nil {
		log.Fatalf("Error: analysis failed: %v", err)
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Error: failed to encode report: %v", err)
	}
	fmt.Println(string(output))
}
