package llm

import (
	"embed"
	"strings"
	"text/template"
)

// System instructions sent ahead of JSON prompts.
const (
	SystemStrictJSON = "You are a strict JSON generator. Always reply ONLY with valid JSON, no explanation."
	SystemJSONOnly   = "Always return valid JSON only."
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").ParseFS(promptFS, "prompts/*.tmpl"))

// AnalysisPromptData fills prompts/analysis.tmpl.
type AnalysisPromptData struct {
	ResumeText string
	// Strict appends a reminder used when retrying after malformed output.
	Strict bool
}

// ResourcePromptData fills prompts/resource.tmpl.
type ResourcePromptData struct {
	Skill string
}

// JobMatchPromptData fills prompts/job_match.tmpl.
type JobMatchPromptData struct {
	ResumeText     string
	JobDescription string
}

// CoverLetterPromptData fills prompts/cover_letter.tmpl.
type CoverLetterPromptData struct {
	ResumeText     string
	JobDescription string
	CompanyName    string
}

// InterviewPromptData fills prompts/interview.tmpl.
type InterviewPromptData struct {
	JobTitle     string
	ResumeText   string
	NumQuestions int
}

// SummarizeJDPromptData fills prompts/summarize_jd.tmpl.
type SummarizeJDPromptData struct {
	JobDescription string
}

// AnalysisPrompt renders the resume scoring prompt.
func AnalysisPrompt(d AnalysisPromptData) string { return render("analysis.tmpl", d) }

// ResourcePrompt renders the per-skill resource prompt.
func ResourcePrompt(d ResourcePromptData) string { return render("resource.tmpl", d) }

// JobMatchPrompt renders the resume vs job description prompt.
func JobMatchPrompt(d JobMatchPromptData) string { return render("job_match.tmpl", d) }

// CoverLetterPrompt renders the cover letter prompt.
func CoverLetterPrompt(d CoverLetterPromptData) string { return render("cover_letter.tmpl", d) }

// InterviewPrompt renders the interview question prompt.
func InterviewPrompt(d InterviewPromptData) string { return render("interview.tmpl", d) }

// SummarizeJDPrompt renders the job description summary prompt.
func SummarizeJDPrompt(d SummarizeJDPromptData) string { return render("summarize_jd.tmpl", d) }

// render panics only on a template bug; all templates are parsed at init.
func render(name string, data any) string {
	var sb strings.Builder
	if err := prompts.ExecuteTemplate(&sb, name, data); err != nil {
		panic("llm: render " + name + ": " + err.Error())
	}
	return strings.TrimSpace(sb.String())
}
