package verify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/factchecker/veracity/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Stage names a pipeline stage.
type Stage string

const (
	StageClaimDetection        Stage = "Claim Detection"
	StageEvidenceRetrieval     Stage = "Evidence Retrieval"
	StageSemanticAnalysis      Stage = "Semantic Analysis"
	StageCredibilityAssessment Stage = "Credibility Assessment"
	StageVerdictClassification Stage = "Verdict Classification"
	StageExplanationGeneration Stage = "Explanation Generation"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{
	StageClaimDetection,
	StageEvidenceRetrieval,
	StageSemanticAnalysis,
	StageCredibilityAssessment,
	StageVerdictClassification,
	StageExplanationGeneration,
}

var stagePercent = map[Stage]int{
	StageClaimDetection:        16,
	StageEvidenceRetrieval:     33,
	StageSemanticAnalysis:      50,
	StageCredibilityAssessment: 66,
	StageVerdictClassification: 83,
	StageExplanationGeneration: 100,
}

// Percent returns the completion percentage reached when the stage finishes.
func (s Stage) Percent() int {
	return stagePercent[s]
}

// ProgressFunc is called after each stage completes.
type ProgressFunc func(stage Stage, percent int)

// Engine runs the six-stage analysis pipeline. It holds no per-request state and
// is safe for concurrent use.
type Engine struct {
	detector    *ClaimDetector
	retriever   *EvidenceRetriever
	semantic    *SemanticAnalyzer
	credibility *CredibilityAssessor
	classifier  *VerdictClassifier
	explainer   *ExplanationGenerator
	bias        *BiasAssessor
	temporal    *TemporalAssessor
	kb          *knowledge.Base
}

// NewEngine creates a new analysis engine over an injected knowledge base.
func NewEngine(cfg *config.Config, kb *knowledge.Base, sampler Sampler) *Engine {
	return &Engine{
		detector:    NewClaimDetector(cfg.Pipeline, sampler),
		retriever:   NewEvidenceRetriever(kb, cfg.CategoryTopics, cfg.Pipeline),
		semantic:    NewSemanticAnalyzer(sampler, cfg.Pipeline.Workers),
		credibility: NewCredibilityAssessor(),
		classifier:  NewVerdictClassifier(cfg.Scoring),
		explainer:   NewExplanationGenerator(cfg.Scoring.Uncertainty.Review),
		bias:        NewBiasAssessor(sampler),
		temporal:    NewTemporalAssessor(sampler),
		kb:          kb,
	}
}

// KnowledgeBase returns the knowledge base the engine reads from.
func (e *Engine) KnowledgeBase() *knowledge.Base {
	return e.kb
}

// Analyze processes text through the complete pipeline. It returns an error
// wrapping models.ErrInvalidInput for blank text, or the context error if ctx is
// done before a stage starts; no partial report is returned in either case.
func (e *Engine) Analyze(ctx context.Context, text string, onStage ProgressFunc) (*models.AnalysisReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", models.ErrInvalidInput)
	}
	if onStage == nil {
		onStage = func(Stage, int) {}
	}

	startTime := time.Now()
	report := &models.AnalysisReport{
		ID:           uuid.New().String(),
		DocumentHash: DocumentHash(text),
	}

	checkpoint := func(s Stage) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("analysis cancelled before %s: %w", strings.ToLower(string(s)), err)
		}
		return nil
	}
	done := func(s Stage) {
		report.ProcessingStages = append(report.ProcessingStages, string(s))
		onStage(s, s.Percent())
	}

	// Stage 1: Claim detection
	if err := checkpoint(StageClaimDetection); err != nil {
		return nil, err
	}
	log.Info().Msg("Stage 1: Detecting checkworthy claims")
	report.Claims = e.detector.Detect(text)
	log.Debug().Int("count", len(report.Claims)).Msg("Claims detected")
	done(StageClaimDetection)

	// Stage 2: Evidence retrieval
	if err := checkpoint(StageEvidenceRetrieval); err != nil {
		return nil, err
	}
	log.Info().Msg("Stage 2: Retrieving evidence")
	evidence, err := e.retriever.Retrieve(ctx, report.Claims)
	if err != nil {
		return nil, fmt.Errorf("evidence retrieval: %w", err)
	}
	report.Evidence = evidence
	log.Debug().Int("groups", len(evidence)).Msg("Evidence retrieved")
	done(StageEvidenceRetrieval)

	// Stage 3: Semantic analysis
	if err := checkpoint(StageSemanticAnalysis); err != nil {
		return nil, err
	}
	log.Info().Msg("Stage 3: Performing semantic analysis")
	sem, err := e.semantic.Analyze(ctx, text, evidence)
	if err != nil {
		return nil, fmt.Errorf("semantic analysis: %w", err)
	}
	report.SemanticAnalysis = sem
	report.MultiHopReasoning = sem.RequiresMultiHop
	done(StageSemanticAnalysis)

	// Stage 4: Credibility assessment
	if err := checkpoint(StageCredibilityAssessment); err != nil {
		return nil, err
	}
	log.Info().Msg("Stage 4: Assessing source credibility")
	report.Credibility = e.credibility.Assess(evidence)
	done(StageCredibilityAssessment)

	// Stage 5: Verdict classification
	if err := checkpoint(StageVerdictClassification); err != nil {
		return nil, err
	}
	log.Info().Msg("Stage 5: Classifying verdict")
	report.Verdict = e.classifier.Classify(evidence, sem, report.Credibility)
	done(StageVerdictClassification)

	// Stage 6: Explanation generation
	if err := checkpoint(StageExplanationGeneration); err != nil {
		return nil, err
	}
	log.Info().Msg("Stage 6: Generating explanation")
	report.Explanation = e.explainer.Generate(report.Verdict, evidence, sem)
	report.BiasMetrics = e.bias.Assess(text, evidence)
	report.TemporalAwareness = e.temporal.Assess(text)
	done(StageExplanationGeneration)

	report.CreatedAt = time.Now()
	report.ProcessingTimeMs = time.Since(startTime).Milliseconds()

	log.Info().
		Str("id", report.ID).
		Str("classification", string(report.Verdict.Classification)).
		Float64("score", report.Verdict.Score).
		Float64("uncertainty", report.Verdict.UncertaintyScore).
		Int("evidence_count", report.Verdict.EvidenceCount).
		Bool("human_review", report.Verdict.RequiresHumanReview).
		Int64("duration_ms", report.ProcessingTimeMs).
		Msg("Analysis complete")

	return report, nil
}

// DocumentHash returns the hex SHA-256 of text. It keys cached reports.
func DocumentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
