package llm

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	gai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ChartAsset is an inline image produced by a code execution pass,
// typically a matplotlib chart rendered server-side.
type ChartAsset struct {
	MIMEType string
	Data     []byte
}

// CodeExecResult collects everything a code-execution pass produced:
// the narrative text, the code the model wrote, the stdout of running
// it, and any rendered charts.
type CodeExecResult struct {
	AnalysisText     string
	ExecutedCode     []string
	ExecutionOutputs []string
	Charts           []ChartAsset
}

// CodeExecService runs analysis prompts against Gemini with the code
// execution tool enabled, so the model can compute on uploaded CSV data
// instead of estimating figures in prose.
type CodeExecService struct {
	Model string
	// OnStatus, when set, receives progress lines for UI streaming.
	OnStatus func(status string)
}

func NewCodeExecService(model string) *CodeExecService {
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	return &CodeExecService{Model: model}
}

func (s *CodeExecService) status(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	fmt.Printf("[CODEEXEC] %s\n", line)
	if s.OnStatus != nil {
		s.OnStatus(line)
	}
}

// AnalyzeWithFiles uploads the given local files, runs one generation
// with the code execution tool, and deletes the uploads before
// returning. Upload failures on individual files are skipped, not
// fatal: the pass degrades to whatever data did make it up.
func (s *CodeExecService) AnalyzeWithFiles(ctx context.Context, prompt string, filePaths []string) (*CodeExecResult, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := gai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("CODEEXEC_CLIENT_ERROR: %v", err)
	}
	defer client.Close()

	var uploaded []*gai.File
	defer func() {
		for _, f := range uploaded {
			if err := client.DeleteFile(ctx, f.Name); err != nil {
				fmt.Printf("[CODEEXEC] cleanup of %s failed: %v\n", f.Name, err)
			}
		}
	}()

	for _, path := range filePaths {
		file, err := s.uploadFile(ctx, client, path)
		if err != nil {
			fmt.Printf("[CODEEXEC] upload skipped for %s: %v\n", path, err)
			continue
		}
		uploaded = append(uploaded, file)
		s.status("uploaded %s", filepath.Base(path))
	}

	model := client.GenerativeModel(s.Model)
	model.Tools = []*gai.Tool{
		{CodeExecution: &gai.CodeExecution{}},
	}
	model.SetTemperature(0.2)

	parts := []gai.Part{gai.Text(prompt)}
	for _, f := range uploaded {
		parts = append(parts, gai.FileData{MIMEType: f.MIMEType, URI: f.URI})
	}

	s.status("running analysis pass with %d file(s)", len(uploaded))
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("CODEEXEC_GENERATION_ERROR: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("CODEEXEC_EMPTY_RESPONSE")
	}

	result := &CodeExecResult{}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case gai.Text:
			result.AnalysisText += string(p)
		case *gai.ExecutableCode:
			result.ExecutedCode = append(result.ExecutedCode, p.Code)
		case *gai.CodeExecutionResult:
			result.ExecutionOutputs = append(result.ExecutionOutputs, p.Output)
		case gai.Blob:
			result.Charts = append(result.Charts, ChartAsset{
				MIMEType: p.MIMEType,
				Data:     p.Data,
			})
		}
	}

	s.status("pass complete: %d code block(s), %d output(s), %d chart(s)",
		len(result.ExecutedCode), len(result.ExecutionOutputs), len(result.Charts))
	return result, nil
}

func (s *CodeExecService) uploadFile(ctx context.Context, client *gai.Client, path string) (*gai.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("CODEEXEC_OPEN_ERROR: %v", err)
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "text/csv"
	}
	file, err := client.UploadFile(ctx, "", f, &gai.UploadFileOptions{
		MIMEType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("CODEEXEC_UPLOAD_ERROR: %v", err)
	}
	return file, nil
}
