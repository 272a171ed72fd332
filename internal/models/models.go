// Package models defines the core data structures used throughout the application.
package models

import (
	"errors"
	"time"
)

// ErrInvalidInput is returned when the text submitted for analysis is empty or whitespace-only.
var ErrInvalidInput = errors.New("invalid input")

// ClaimCategory represents the subject area of a checkworthy claim.
type ClaimCategory string

const (
	CategoryClimate   ClaimCategory = "climate"
	CategoryHealth    ClaimCategory = "health"
	CategoryPolitics  ClaimCategory = "politics"
	CategoryEconomics ClaimCategory = "economics"
	CategoryGeneral   ClaimCategory = "general"
)

// SourceTier is the authority tier assigned to an evidence source.
type SourceTier string

const (
	TierAuthoritative SourceTier = "authoritative"
	TierAcademic      SourceTier = "academic"
	TierGovernmental  SourceTier = "governmental"
	TierOther         SourceTier = "other"
)

// Classification is the final verdict bucket.
type Classification string

const (
	VerifiedTrue         Classification = "verified_true"
	LikelyTrue           Classification = "likely_true"
	LikelyFalse          Classification = "likely_false"
	VerifiedFalse        Classification = "verified_false"
	InsufficientEvidence Classification = "insufficient_evidence"
)

// Claim is a checkworthy sentence selected from the input text.
type Claim struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Category   ClaimCategory `json:"category"`
	Priority   float64       `json:"priority"`
}

// EvidenceSource is a knowledge base record enriched with per-claim scores.
type EvidenceSource struct {
	Title          string  `json:"title"`
	Credibility    float64 `json:"credibility"`
	Supports       bool    `json:"supports"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float64 `json:"relevance_score"`
	TemporalScore  float64 `json:"temporal_score"`
}

// EvidenceGroup holds the sources retrieved for one claim.
type EvidenceGroup struct {
	ClaimID   string           `json:"claim_id"`   // truncated claim text + "..."
	ClaimText string           `json:"claim_text"` // full claim text
	Topic     string           `json:"topic"`
	Sources   []EvidenceSource `json:"sources"`
}

// SemanticAnalysis holds per-source entailment scores and text-level aggregates.
// The three score slices are parallel: index i refers to the i-th source across all groups.
type SemanticAnalysis struct {
	EntailmentScores    []float64 `json:"entailment_scores"`
	ContradictionScores []float64 `json:"contradiction_scores"`
	NeutralScores       []float64 `json:"neutral_scores"` // may be negative
	RequiresMultiHop    bool      `json:"requires_multi_hop"`
	SemanticSimilarity  float64   `json:"semantic_similarity"`
	LogicalConsistency  float64   `json:"logical_consistency"`
}

// CredibilityAssessment aggregates source credibility across all groups.
type CredibilityAssessment struct {
	AverageCredibility float64      `json:"average_credibility"`
	SourceTypes        []SourceTier `json:"source_types"`
	AuthorityScores    []float64    `json:"authority_scores"`
}

// ConfidenceInterval brackets the verdict score. Both bounds lie in [0,1] and Low <= High.
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Verdict is the fused classification with its uncertainty band.
type Verdict struct {
	Classification      Classification     `json:"classification"`
	Score               float64            `json:"score"`
	UncertaintyScore    float64            `json:"uncertainty_score"`
	EvidenceVariance    float64            `json:"evidence_variance"`
	ConfidenceInterval  ConfidenceInterval `json:"confidence_interval"`
	ConflictingEvidence bool               `json:"conflicting_evidence"`
	EvidenceCount       int                `json:"evidence_count"`
	RequiresHumanReview bool               `json:"requires_human_review"`
}

// GroupBreakdown summarizes one evidence group for the explanation.
type GroupBreakdown struct {
	ClaimText            string           `json:"claim_text"`
	SupportingSources    int              `json:"supporting_sources"`
	ContradictingSources int              `json:"contradicting_sources"`
	AverageCredibility   float64          `json:"average_credibility"`
	TopSources           []EvidenceSource `json:"top_sources"`
}

// Explanation is the human-readable account of a verdict.
type Explanation struct {
	Summary           string           `json:"summary"`
	EvidenceBreakdown []GroupBreakdown `json:"evidence_breakdown"`
	ReasoningSteps    []string         `json:"reasoning_steps"`
	Limitations       []string         `json:"limitations"`
	NextSteps         []string         `json:"next_steps"`
}

// BiasMetrics are auxiliary bias proxies appended to the report.
type BiasMetrics struct {
	PoliticalBias      float64 `json:"political_bias"`
	CulturalBias       float64 `json:"cultural_bias"`
	SourceDiversity    float64 `json:"source_diversity"`
	PerspectiveBalance float64 `json:"perspective_balance"`
}

// TemporalAwareness reports time references found in the input text.
type TemporalAwareness struct {
	HasTimeReferences bool     `json:"has_time_references"`
	TimeReferences    []string `json:"time_references"`
	RecencyScore      float64  `json:"recency_score"`
}

// AnalysisReport is the complete result of one analysis request.
type AnalysisReport struct {
	ID                string                `json:"id"`
	DocumentHash      string                `json:"document_hash"`
	Claims            []Claim               `json:"claims"`
	Evidence          []EvidenceGroup       `json:"evidence"`
	SemanticAnalysis  SemanticAnalysis      `json:"semantic_analysis"`
	Credibility       CredibilityAssessment `json:"credibility"`
	Verdict           Verdict               `json:"verdict"`
	Explanation       Explanation           `json:"explanation"`
	BiasMetrics       BiasMetrics           `json:"bias_metrics"`
	TemporalAwareness TemporalAwareness     `json:"temporal_awareness"`
	MultiHopReasoning bool                  `json:"multi_hop_reasoning"`
	ProcessingStages  []string              `json:"processing_stages"`
	ProcessingTimeMs  int64                 `json:"processing_time_ms"`
	CreatedAt         time.Time             `json:"created_at"`
}

// TopicSummary describes one knowledge base topic.
type TopicSummary struct {
	Topic              string  `json:"topic"`
	SourceCount        int     `json:"source_count"`
	AverageCredibility float64 `json:"average_credibility"`
}

// AuditLog represents an API request audit entry.
type AuditLog struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	RemoteAddr   string    `json:"remote_addr"`
	Endpoint     string    `json:"endpoint"`
	Method       string    `json:"method"`
	RequestSize  int64     `json:"request_size"`
	ResponseCode int       `json:"response_code"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// AnalyzeRequest is the request body for analysis endpoints.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Warning represents a non-fatal issue during processing.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}
