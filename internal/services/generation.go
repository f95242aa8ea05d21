package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
	"github.com/edukraft/courseforge-backend/internal/services/structurecache"
	"github.com/edukraft/courseforge-backend/internal/syllabus"
)

const defaultTargetModules = 5

// GenerateRequest describes one course structure generation.
type GenerateRequest struct {
	Subject        string `json:"subject"`
	EducationLevel string `json:"education_level"`
	TargetModules  int    `json:"target_modules,omitempty"`
	UserIdentifier string `json:"user_identifier,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

// GenerateResult is the outcome of a generation: the structure plus whether
// it was served from the cache, and the truncation report of the improve
// pass when one ran.
type GenerateResult struct {
	Structure  *types.CourseStructure     `json:"structure"`
	Reused     bool                       `json:"reused"`
	Truncation *syllabus.TruncationReport `json:"truncation,omitempty"`
}

type CourseGenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

type courseGenerationService struct {
	log      *logger.Logger
	cache    structurecache.CacheService
	ai       AIClient
	progress ProgressBus
	themes   []syllabus.Theme
}

// NewCourseGenerationService wires the full pipeline: cache front, LLM topic
// sourcing, normalization, clustering, materialization. ai may be nil, in
// which case every structure comes from the deterministic baseline.
func NewCourseGenerationService(
	baseLog *logger.Logger,
	cache structurecache.CacheService,
	ai AIClient,
	progress ProgressBus,
	themes []syllabus.Theme,
) CourseGenerationService {
	if len(themes) == 0 {
		themes = syllabus.DefaultThemes()
	}
	return &courseGenerationService{
		log:      baseLog.With("service", "CourseGenerationService"),
		cache:    cache,
		ai:       ai,
		progress: progress,
		themes:   themes,
	}
}

func (s *courseGenerationService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	target := req.TargetModules
	if target <= 0 {
		target = defaultTargetModules
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	s.publish(ctx, req, "lookup", 10, "checking structure cache")

	var truncation *syllabus.TruncationReport
	structure, reused, err := s.cache.GetOrGenerate(ctx, subject, req.EducationLevel,
		func(ctx context.Context) (structurecache.SaveInput, error) {
			in, report, err := s.buildStructure(ctx, req, subject, target)
			truncation = report
			return in, err
		})
	if err != nil {
		s.publish(ctx, req, "failed", 100, err.Error())
		return nil, fmt.Errorf("generate structure for %q: %w", subject, err)
	}

	s.cache.RecordUsage(ctx, structure.ID, reused, req.UserIdentifier)
	s.publish(ctx, req, "done", 100, "")

	return &GenerateResult{
		Structure:  structure,
		Reused:     reused,
		Truncation: truncation,
	}, nil
}

// buildStructure runs the pipeline for a cache miss. The LLM is consulted
// twice: once for raw topics, once for the improve pass; both failures
// degrade instead of aborting.
func (s *courseGenerationService) buildStructure(ctx context.Context, req GenerateRequest, subject string, target int) (structurecache.SaveInput, *syllabus.TruncationReport, error) {
	s.publish(ctx, req, "sourcing", 30, "collecting topics")

	rawTopics, source := s.sourceTopics(ctx, subject, req.EducationLevel, target)

	topics := syllabus.NormalizeTopics(rawTopics, source)
	if len(topics) == 0 {
		// Even noise-only LLM output leaves us with the baseline.
		topics = syllabus.NormalizeTopics(baselineTopics(subject, target), types.SourceUser)
	}

	s.publish(ctx, req, "clustering", 60, "")
	clusters := syllabus.ClusterTopics(topics, target, s.themes)
	modules := syllabus.ClustersToModules(clusters)

	s.publish(ctx, req, "improving", 80, "")
	modules, report := s.improveStructure(ctx, subject, modules)

	return structurecache.SaveInput{
		Subject:        subject,
		EducationLevel: req.EducationLevel,
		Title:          fmt.Sprintf("Curso de %s", subject),
		CourseLevel:    req.EducationLevel,
		Modules:        modules,
		Metadata: map[string]any{
			"topic_source":   source,
			"target_modules": target,
			"generated_at":   time.Now().UTC().Format(time.RFC3339),
		},
	}, report, nil
}

// sourceTopics asks the LLM for a topic list and reports which source the
// returned strings came from. Any failure falls back to the deterministic
// baseline so a dead LLM never blocks generation.
func (s *courseGenerationService) sourceTopics(ctx context.Context, subject, level string, target int) ([]string, string) {
	if s.ai == nil {
		return baselineTopics(subject, target), types.SourceUser
	}

	prompt := fmt.Sprintf(
		"Liste os tópicos essenciais de um curso de %q para o nível %q. "+
			"Responda apenas com um array JSON de strings, um tópico por item, sem texto adicional.",
		subject, level)

	text, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		s.log.Warn("topic sourcing failed, using baseline topics", "subject", subject, "error", err)
		return baselineTopics(subject, target), types.SourceUser
	}

	topics := parseTopicList(text)
	if len(topics) == 0 {
		s.log.Warn("topic sourcing returned nothing usable, using baseline topics", "subject", subject)
		return baselineTopics(subject, target), types.SourceUser
	}
	return topics, types.SourceLLM
}

// improveStructure asks the LLM to refine module titles and topic ordering,
// then runs the result through the truncation guard: a rewrite that drops
// topics is discarded wholesale.
func (s *courseGenerationService) improveStructure(ctx context.Context, subject string, modules []types.Module) ([]types.Module, *syllabus.TruncationReport) {
	if s.ai == nil {
		return modules, nil
	}

	encoded, err := json.Marshal(modules)
	if err != nil {
		s.log.Warn("skipping improve pass", "error", err)
		return modules, nil
	}

	prompt := fmt.Sprintf(
		"Melhore os títulos e a ordem desta estrutura de curso sobre %q. "+
			"Preserve todos os tópicos existentes. Responda apenas com o JSON no mesmo formato.\n%s",
		subject, encoded)

	text, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		s.log.Warn("improve pass failed, keeping original structure", "subject", subject, "error", err)
		return modules, nil
	}

	var candidate []types.Module
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &candidate); err != nil {
		s.log.Warn("improve pass returned malformed JSON, keeping original structure", "error", err)
		return modules, nil
	}

	final, report := syllabus.GuardTruncation(modules, candidate)
	if report.Rejected {
		s.log.Warn("improve pass rejected",
			"reason", report.Reason,
			"original_topics", report.OriginalTopics,
			"candidate_topics", report.CandidateTopics)
	}
	return final, &report
}

func (s *courseGenerationService) publish(ctx context.Context, req GenerateRequest, stage string, progress int, message string) {
	if s.progress == nil {
		return
	}
	if err := s.progress.Publish(ctx, ProgressEvent{
		RequestID: req.RequestID,
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		At:        time.Now().UTC(),
	}); err != nil {
		s.log.Debug("progress event dropped", "stage", stage, "error", err)
	}
}

// baselineTopics is the deterministic structure used when no LLM output is
// available. Plain but always valid input for the pipeline.
func baselineTopics(subject string, target int) []string {
	topics := []string{
		fmt.Sprintf("Introdução a %s", subject),
		fmt.Sprintf("Conceitos fundamentais de %s", subject),
		fmt.Sprintf("História e contexto de %s", subject),
		fmt.Sprintf("Princípios e definições de %s", subject),
		fmt.Sprintf("Métodos de estudo em %s", subject),
		fmt.Sprintf("Ferramentas e técnicas de %s", subject),
		fmt.Sprintf("Aplicações práticas de %s", subject),
		fmt.Sprintf("Exercícios e projetos de %s", subject),
		fmt.Sprintf("Estudos de caso em %s", subject),
		fmt.Sprintf("Tópicos avançados de %s", subject),
	}
	n := target * 2
	if n <= 0 || n > len(topics) {
		n = len(topics)
	}
	return topics[:n]
}

// parseTopicList extracts topic strings from raw LLM output. It accepts a
// JSON array of strings (optionally fenced in a markdown code block), an
// object with a "topics" array, or a plain newline-separated list.
func parseTopicList(text string) []string {
	cleaned := stripCodeFence(text)

	var arr []string
	if err := json.Unmarshal([]byte(cleaned), &arr); err == nil {
		return nonEmpty(arr)
	}

	var obj struct {
		Topics []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil && len(obj.Topics) > 0 {
		return nonEmpty(obj.Topics)
	}

	// Fall back to one topic per line; the normalizer strips bullets and
	// numbering later.
	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "[" || line == "]" {
			continue
		}
		line = strings.Trim(line, `",`)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(trimmed[:idx])
		if first == "" || !strings.ContainsAny(first, " \t") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
