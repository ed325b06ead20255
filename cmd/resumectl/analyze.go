package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ai-resume-saas/internal/analysis"
	"ai-resume-saas/internal/assist"
	"ai-resume-saas/internal/bootstrap"
	"ai-resume-saas/internal/extract"
	"ai-resume-saas/internal/shared/config"
)

const cliIdentity = "cli"

var (
	analyzeFile string
	analyzeText string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume and recommend resources for missing skills",
	RunE:  runAnalyze,
}

var (
	matchResume string
	matchJD     string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Compare a resume with a job description",
	RunE:  runMatch,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Path to a PDF, DOCX or text resume")
	analyzeCmd.Flags().StringVarP(&analyzeText, "text", "t", "", "Raw resume text")
	analyzeCmd.MarkFlagsOneRequired("file", "text")
	analyzeCmd.MarkFlagsMutuallyExclusive("file", "text")

	matchCmd.Flags().StringVarP(&matchResume, "resume", "r", "", "Path to the resume file (required)")
	matchCmd.Flags().StringVarP(&matchJD, "jd", "j", "", "Path to the job description text file (required)")
	if err := matchCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}
	if err := matchCmd.MarkFlagRequired("jd"); err != nil {
		panic(fmt.Sprintf("failed to mark jd flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd, matchCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	text := analyzeText
	if analyzeFile != "" {
		var err error
		if text, err = readResume(ctx, analyzeFile); err != nil {
			return err
		}
	}

	cfg := config.Load()
	client, err := bootstrap.NewLLMClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("reasoning provider: %w", err)
	}
	enricher := analysis.NewEnricher(client, cfg.EnrichWorkers, cfg.EnrichTimeout)
	analyzer := analysis.NewAnalyzer(client, enricher, analysis.AnalyzerOptions{RetryMalformed: cfg.AnalyzeRetryMalformed})
	svc := analysis.NewService(analysis.NewResolver(nil), analyzer, cfg.AnalyzeBudget)

	result, err := svc.Analyze(ctx, cliIdentity, analysis.Request{ResumeText: text})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	resumeText, err := readResume(ctx, matchResume)
	if err != nil {
		return err
	}
	jd, err := os.ReadFile(matchJD)
	if err != nil {
		return fmt.Errorf("read job description %s: %w", matchJD, err)
	}

	client, err := bootstrap.NewLLMClient(ctx, config.Load())
	if err != nil {
		return fmt.Errorf("reasoning provider: %w", err)
	}
	result, err := assist.NewService(client).JobMatch(ctx, resumeText, string(jd))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func readResume(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume %s: %w", path, err)
	}
	text, err := extract.Text(ctx, data, "", filepath.Base(path))
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) {
			return "", fmt.Errorf("%s: only PDF, DOCX and plain text resumes are supported", path)
		}
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: no text could be extracted", path)
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
