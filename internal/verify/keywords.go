package verify

import (
	"regexp"
	"strings"

	"github.com/factchecker/veracity/internal/models"
)

// KeywordSet matches whole words or phrases, case-insensitively.
type KeywordSet struct {
	Name  string
	Words []string
	re    *regexp.Regexp
}

// NewKeywordSet compiles a keyword set.
func NewKeywordSet(name string, words ...string) KeywordSet {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return KeywordSet{
		Name:  name,
		Words: words,
		re:    regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Matches reports whether text contains any keyword.
func (k KeywordSet) Matches(text string) bool {
	return k.re.MatchString(text)
}

// Find returns every keyword occurrence in text, in order.
func (k KeywordSet) Find(text string) []string {
	return k.re.FindAllString(text, -1)
}

var (
	factualKeywords   = NewKeywordSet("factual", "study", "research", "data", "statistics", "percent", "number", "evidence", "proven", "showed", "found")
	reportingKeywords = NewKeywordSet("reporting", "claims", "states", "reports", "according")

	urgencyKeywords     = NewKeywordSet("urgency", "breaking", "urgent", "new", "latest")
	evidentiaryKeywords = NewKeywordSet("evidentiary", "study", "research", "data")
	riskKeywords        = NewKeywordSet("risk", "death", "danger", "risk", "harmful")

	assertiveKeywords     = NewKeywordSet("assertive", "shows", "indicates", "proves", "demonstrates", "confirms")
	contradictionKeywords = NewKeywordSet("contradiction", "not", "no", "never", "false", "incorrect", "wrong", "disputes", "denies")
	negationKeywords      = NewKeywordSet("negation", "not", "no", "never")
	causalKeywords        = NewKeywordSet("causal", "because", "therefore", "thus", "since", "due to", "as a result")
)

// priorityRule adds Boost to a claim's priority when Keywords match.
type priorityRule struct {
	Keywords KeywordSet
	Boost    float64
}

var priorityRules = []priorityRule{
	{urgencyKeywords, 0.3},
	{evidentiaryKeywords, 0.2},
	{riskKeywords, 0.25},
}

const basePriority = 0.5

type categoryRule struct {
	Category models.ClaimCategory
	Keywords KeywordSet
}

// categoryRules are evaluated in order; the first match wins.
var categoryRules = []categoryRule{
	{models.CategoryClimate, NewKeywordSet("climate", "climate", "temperature", "temperatures", "warming", "carbon")},
	{models.CategoryHealth, NewKeywordSet("health", "vaccine", "vaccines", "covid", "virus", "medicine")},
	{models.CategoryPolitics, NewKeywordSet("politics", "election", "elections", "vote", "votes", "fraud", "ballot", "ballots")},
	{models.CategoryEconomics, NewKeywordSet("economics", "economy", "stock", "stocks", "financial", "money")},
}

type tierRule struct {
	Tier     models.SourceTier
	Keywords KeywordSet
}

// tierRules are evaluated in order; titles matching none are TierOther.
var tierRules = []tierRule{
	{models.TierAuthoritative, NewKeywordSet("authoritative", "WHO", "CDC", "NASA", "IPCC", "Nature", "Science", "Lancet")},
	{models.TierAcademic, NewKeywordSet("academic", "University", "Research", "Study", "Journal")},
	{models.TierGovernmental, NewKeywordSet("governmental", "Government", "Official", "Federal")},
}

// Categorize assigns a claim category by first matching keyword rule.
func Categorize(sentence string) models.ClaimCategory {
	for _, rule := range categoryRules {
		if rule.Keywords.Matches(sentence) {
			return rule.Category
		}
	}
	return models.CategoryGeneral
}

// ClassifyTier assigns an authority tier from a source title.
func ClassifyTier(title string) models.SourceTier {
	for _, rule := range tierRules {
		if rule.Keywords.Matches(title) {
			return rule.Tier
		}
	}
	return models.TierOther
}
