// Package embed provides Tier-2 classification: cosine similarity between
// a file's extracted text and per-category prototype vectors fetched
// from an OpenAI-compatible embedding endpoint.
package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/KimHands/clasp/pkg/builtin"
	"github.com/KimHands/clasp/pkg/config"
)

// UnclassifiedScoreThreshold is the minimum cosine score Tier-2 requires
// before it will name a category at all (§4.2).
const UnclassifiedScoreThreshold = 0.3

// DefaultTagThreshold is InferTag's default acceptance threshold.
const DefaultTagThreshold = 0.35

// feedbackLearningRate is how far ApplyFeedback nudges a prototype
// toward a confirmed example on each correction.
const feedbackLearningRate = 0.05

// categoryKeywords mirrors tier2_embedding.py's CATEGORY_KEYWORDS table —
// the keyword set whose mean embedding seeds each built-in category's
// prototype vector.
var categoryKeywords = map[string][]string{
	"문서": {
		"보고서", "report", "논문", "paper", "제안서", "명세서",
		"과제", "레포트", "계획서", "기획서", "회의록", "계약서",
		"지침서", "매뉴얼", "안내문", "공문", "설명서", "협약서", "의뢰서",
	},
	"프레젠테이션": {
		"발표", "presentation", "슬라이드", "PPT", "피피티",
		"keynote", "덱", "deck", "발표자료", "강의", "세미나",
		"프레젠테이션", "발표문", "발표회", "시연",
	},
	"스프레드시트": {
		"스프레드시트", "엑셀", "excel", "표", "통계",
		"집계", "수식", "셀", "시트", "데이터표",
		"가계부", "예산", "정산", "매출", "재무",
	},
	"코드": {
		"프로그래밍", "programming", "코드", "함수", "클래스",
		"알고리즘", "algorithm", "보안", "security", "데이터베이스",
		"database", "네트워크", "network", "머신러닝", "machine learning",
		"운영체제", "OS", "소스코드", "개발", "구현",
	},
	"데이터": {
		"데이터", "data", "분석", "CSV", "JSON", "XML",
		"쿼리", "SQL", "파이프라인", "ETL", "로그",
		"수집", "전처리", "시각화", "통계", "샘플",
	},
}

// tagCandidates mirrors TAG_CANDIDATES: detail-level tags InferTag picks
// among once a category has already been assigned.
var tagCandidates = map[string][]string{
	"문서": {
		"논문", "보고서", "기획서", "계획서", "회의록", "계약서",
		"매뉴얼", "제안서", "안내문", "공문", "설명서", "협약서",
		"과제", "레포트", "학술", "연구",
	},
	"프레젠테이션": {
		"발표자료", "세미나", "강의", "컨퍼런스", "시연",
		"교육", "워크숍", "프로젝트발표", "연구발표", "업무보고",
	},
	"스프레드시트": {
		"예산", "정산", "매출", "재무", "통계", "집계",
		"가계부", "재고", "일정", "현황",
	},
	"코드": {
		"보안", "네트워크", "알고리즘", "머신러닝", "데이터베이스",
		"운영체제", "암호화", "웹개발", "시스템", "인공지능",
	},
	"데이터": {
		"분석결과", "로그", "설문", "통계데이터", "실험데이터",
		"수집데이터", "전처리", "시각화", "파이프라인",
	},
}

// CustomCategorySpec is one entry passed to LoadCustomCategories.
type CustomCategorySpec struct {
	Name     string
	Keywords []string
}

// Provider is the Tier-2 embedding classifier. One process-wide instance
// is expected; all exported methods are safe for concurrent use.
type Provider struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	model   string
	apiKey  string
	log     zerolog.Logger

	feedbackPath string

	mu         sync.RWMutex
	prototypes map[string][]float32 // category -> prototype vector
	tagVectors map[string]map[string][]float32
	customTags map[string][]string
}

// New builds a Provider from config; it does not block on network I/O.
func New(cfg config.Config, log zerolog.Logger) *Provider {
	p := &Provider{
		client:       &http.Client{Timeout: time.Duration(cfg.EmbeddingTimeoutSecond) * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
		baseURL:      strings.TrimRight(cfg.EmbeddingBaseURL, "/"),
		model:        cfg.EmbeddingModel,
		apiKey:       cfg.EmbeddingAPIKey,
		log:          log.With().Str("component", "embed").Logger(),
		feedbackPath: cfg.FeedbackPath(),
		prototypes:   make(map[string][]float32),
		tagVectors:   make(map[string]map[string][]float32),
		customTags:   make(map[string][]string),
	}
	return p
}

// Warm seeds the built-in category prototypes (one keyword-mean embedding
// call per category) and applies any persisted feedback override. Callers
// invoke this once at startup; ClassifyText lazily warms on first use if
// Warm was never called.
func (p *Provider) Warm(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.warmLocked(ctx)
}

func (p *Provider) warmLocked(ctx context.Context) error {
	if len(p.prototypes) > 0 {
		return nil
	}
	for _, category := range builtin.BaseCategories {
		vec, err := p.meanEmbeddingLocked(ctx, categoryKeywords[category])
		if err != nil {
			return fmt.Errorf("seed prototype for %q: %w", category, err)
		}
		p.prototypes[category] = vec
	}
	p.loadFeedbackLocked()
	return nil
}

// ClassifyText embeds text[:2000] and returns the best-matching category
// by cosine similarity. category is empty when the best score is below
// UnclassifiedScoreThreshold, but score is still reported.
func (p *Provider) ClassifyText(ctx context.Context, text string) (category string, score float32, embeddingJSON []byte, err error) {
	p.mu.Lock()
	if err := p.warmLocked(ctx); err != nil {
		p.mu.Unlock()
		p.log.Warn().Err(err).Msg("tier2 prototype warm-up failed")
		return "", 0, nil, nil
	}
	p.mu.Unlock()

	clipped := clip(text, 2000)
	vec, err := p.embedOne(ctx, clipped)
	if err != nil {
		p.log.Warn().Err(err).Msg("tier2 embedding failed")
		return "", 0, nil, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	best, bestScore := "", float32(0)
	for cat, proto := range p.prototypes {
		s := cosine(vec, proto)
		if s > bestScore {
			bestScore = s
			best = cat
		}
	}
	embJSON, _ := json.Marshal(vec)
	if bestScore < UnclassifiedScoreThreshold {
		return "", bestScore, embJSON, nil
	}
	return best, bestScore, embJSON, nil
}

// InferTag picks the category's best-matching detail tag, combining the
// built-in candidate list with any custom keywords registered for that
// category via LoadCustomCategories.
func (p *Provider) InferTag(ctx context.Context, text, category string, threshold float32) (string, bool, error) {
	if text == "" || category == "" {
		return "", false, nil
	}
	if threshold <= 0 {
		threshold = DefaultTagThreshold
	}

	p.mu.Lock()
	vectors, err := p.tagVectorsLocked(ctx, category)
	p.mu.Unlock()
	if err != nil {
		p.log.Warn().Err(err).Str("category", category).Msg("tag inference failed")
		return "", false, nil
	}
	if len(vectors) == 0 {
		return "", false, nil
	}

	vec, err := p.embedOne(ctx, clip(text, 2000))
	if err != nil {
		p.log.Warn().Err(err).Msg("tag inference embed failed")
		return "", false, nil
	}

	bestTag, bestScore := "", float32(0)
	for tag, tagVec := range vectors {
		s := cosine(vec, tagVec)
		if s > bestScore {
			bestScore = s
			bestTag = tag
		}
	}
	if bestScore < threshold {
		return "", false, nil
	}
	return bestTag, true, nil
}

func (p *Provider) tagVectorsLocked(ctx context.Context, category string) (map[string][]float32, error) {
	if cached, ok := p.tagVectors[category]; ok {
		return cached, nil
	}
	candidates := append([]string{}, tagCandidates[category]...)
	candidates = append(candidates, p.customTags[category]...)
	candidates = dedupe(candidates)
	if len(candidates) == 0 {
		return nil, nil
	}

	vecs := make(map[string][]float32, len(candidates))
	for _, tag := range candidates {
		v, err := p.embedOne(ctx, tag)
		if err != nil {
			return nil, err
		}
		vecs[tag] = v
	}
	p.tagVectors[category] = vecs
	return vecs, nil
}

// ApplyFeedback nudges category's prototype toward text's embedding and
// persists the full prototype set, so the correction survives a restart.
func (p *Provider) ApplyFeedback(ctx context.Context, text, category string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.warmLocked(ctx); err != nil {
		return err
	}
	proto, ok := p.prototypes[category]
	if !ok {
		return nil
	}

	vec, err := p.embedOne(ctx, clip(text, 2000))
	if err != nil {
		return err
	}
	updated := make([]float32, len(proto))
	for i := range proto {
		var v float32
		if i < len(vec) {
			v = vec[i]
		}
		updated[i] = (1-feedbackLearningRate)*proto[i] + feedbackLearningRate*v
	}
	normalize(updated)
	p.prototypes[category] = updated

	return p.saveFeedbackLocked()
}

// LoadCustomCategories replaces every non-built-in prototype with the
// caller's set: keyword-mean when keywords are present, a bare name
// embedding otherwise. Built-in prototypes are left untouched.
func (p *Provider) LoadCustomCategories(ctx context.Context, entries []CustomCategorySpec) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.warmLocked(ctx); err != nil {
		return err
	}

	builtinSet := make(map[string]bool, len(builtin.BaseCategories))
	for _, c := range builtin.BaseCategories {
		builtinSet[c] = true
	}
	for name := range p.prototypes {
		if !builtinSet[name] {
			delete(p.prototypes, name)
			delete(p.tagVectors, name)
		}
	}
	p.customTags = make(map[string][]string)

	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		var vec []float32
		var err error
		keywords := nonEmpty(entry.Keywords)
		if len(keywords) > 0 {
			vec, err = p.meanEmbeddingLocked(ctx, keywords)
			p.customTags[name] = keywords
		} else {
			vec, err = p.embedOne(ctx, name)
		}
		if err != nil {
			return fmt.Errorf("embed custom category %q: %w", name, err)
		}
		p.prototypes[name] = vec
	}

	p.loadFeedbackLocked()
	return nil
}

// ComputeEmbedding embeds text[:500] for cover-page storage.
func (p *Provider) ComputeEmbedding(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}
	vec, err := p.embedOne(ctx, clip(text, 500))
	if err != nil {
		return nil, err
	}
	return json.Marshal(vec)
}

// ComputeSimilarity returns the cosine similarity of two JSON-encoded
// embedding vectors, or 0 if either fails to parse.
func ComputeSimilarity(jsonA, jsonB []byte) float32 {
	var a, b []float32
	if err := json.Unmarshal(jsonA, &a); err != nil {
		return 0
	}
	if err := json.Unmarshal(jsonB, &b); err != nil {
		return 0
	}
	return cosine(a, b)
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (sqrt(na) * sqrt(nb)))
}

func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 32; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}
