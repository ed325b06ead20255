// Package analysis scores a resume with the reasoning service and recommends
// one learning resource per missing skill.
package analysis

// Placeholder fills title and url for skills whose enrichment failed.
const Placeholder = "N/A"

// Request selects the text to analyze. ResumeText wins when both are set.
type Request struct {
	ResumeText string `json:"resumeText"`
	ResumeID   string `json:"resumeId"`
}

// Result is the analysis returned to clients.
type Result struct {
	Score           float64                  `json:"score"`
	MissingSkills   []string                 `json:"missingSkills"`
	Strengths       []string                 `json:"strengths"`
	ImprovementTips []string                 `json:"improvementTips"`
	Summary         string                   `json:"summary"`
	ResourceLinks   []ResourceRecommendation `json:"resourceLinks"`
}

// ResourceRecommendation is one learning resource for a skill.
type ResourceRecommendation struct {
	Skill string `json:"skill"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func placeholderFor(skill string) ResourceRecommendation {
	return ResourceRecommendation{Skill: skill, Title: Placeholder, URL: Placeholder}
}

func emptyResult() Result {
	return Result{ResourceLinks: []ResourceRecommendation{}}
}
