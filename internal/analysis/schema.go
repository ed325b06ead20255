package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"ai-resume-saas/internal/llm"
)

const analysisSchemaJSON = `{
  "type": "object",
  "required": ["score", "missingSkills", "strengths", "improvementTips", "summary"],
  "properties": {
    "score": {"type": "number", "minimum": 0, "maximum": 100},
    "missingSkills": {"type": "array", "items": {"type": "string"}},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "improvementTips": {"type": "array", "items": {"type": "string"}},
    "summary": {"type": "string"}
  }
}`

// rootField is how gojsonschema names the document itself in errors.
const rootField = "(root)"

var analysisSchema = mustSchema(analysisSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile analysis schema: %v", err))
	}
	return s
}

// decodeAnalysis validates raw against the analysis schema and decides how
// to read it: a conforming payload is decoded as typed, a payload that is not
// a JSON object is malformed, and anything else goes through repair. The
// returned issues are the schema violations that triggered the repair.
func decodeAnalysis(raw []byte) (Result, []string, error) {
	verdict, err := analysisSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Result{}, nil, &llm.MalformedOutputError{Raw: string(raw), Cause: fmt.Errorf("analysis is not JSON: %w", err)}
	}

	if verdict.Valid() {
		var res Result
		if err := json.Unmarshal(raw, &res); err != nil {
			return Result{}, nil, &llm.MalformedOutputError{Raw: string(raw), Cause: err}
		}
		res.MissingSkills = compact(res.MissingSkills)
		res.Strengths = compact(res.Strengths)
		res.ImprovementTips = compact(res.ImprovementTips)
		res.Summary = strings.TrimSpace(res.Summary)
		return res, nil, nil
	}

	issues := make([]string, 0, len(verdict.Errors()))
	for _, e := range verdict.Errors() {
		if e.Field() == rootField && e.Type() == "invalid_type" {
			return Result{}, nil, &llm.MalformedOutputError{Raw: string(raw), Cause: errors.New("analysis is not a JSON object")}
		}
		issues = append(issues, e.String())
	}
	res, err := repair(raw)
	return res, issues, err
}

// repair turns a primary analysis payload into a Result. Only a missing or
// non-numeric score is fatal; everything else degrades to empty values.
func repair(raw []byte) (Result, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return Result{}, &llm.MalformedOutputError{Raw: string(raw), Cause: errors.New("analysis is not a JSON object")}
	}

	score, ok := toScore(doc["score"])
	if !ok {
		return Result{}, &llm.MalformedOutputError{Raw: string(raw), Cause: errors.New("score is missing or not numeric")}
	}

	summary, _ := doc["summary"].(string)
	return Result{
		Score:           score,
		MissingSkills:   toStringList(doc["missingSkills"]),
		Strengths:       toStringList(doc["strengths"]),
		ImprovementTips: toStringList(doc["improvementTips"]),
		Summary:         strings.TrimSpace(summary),
	}, nil
}

func toScore(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Max(0, math.Min(100, f)), true
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
