package router

import (
	"context"
	"log"
	"strings"
	"time"

	"myfolio-chatbot-be/pkg/llm"
	"myfolio-chatbot-be/pkg/rag/state"
)

// Branch names are the routing targets the graph executor dispatches to.
const (
	BranchSearchPolicy    = "search_policy"
	BranchSearchSubject   = "search_subject"
	BranchSearchAdmission = "search_admission"
	BranchSearchBook      = "search_book"
	BranchSearchService   = "search_service"
	BranchFallback        = "llm_fallback"
)

// categoryBranches maps each in-enum category to its retrieval branch.
var categoryBranches = map[state.Category]string{
	state.CategoryPolicy:    BranchSearchPolicy,
	state.CategorySubject:   BranchSearchSubject,
	state.CategoryAdmission: BranchSearchAdmission,
	state.CategoryBook:      BranchSearchBook,
	state.CategoryService:   BranchSearchService,
}

// branchCategories is the reverse mapping applied after text classification,
// so downstream prompt conditioning and logging see the inferred category.
var branchCategories = map[string]state.Category{
	BranchSearchPolicy:    state.CategoryPolicy,
	BranchSearchSubject:   state.CategorySubject,
	BranchSearchAdmission: state.CategoryAdmission,
	BranchSearchBook:      state.CategoryBook,
	BranchSearchService:   state.CategoryService,
	BranchFallback:        state.CategoryUnspecified,
}

// classifierLabels maps the labels the classification prompt asks for back to
// branch names. Matching is done by substring so minor formatting noise in the
// completion does not derail routing.
var classifierLabels = []struct {
	label  string
	branch string
}{
	{"search_policy", BranchSearchPolicy},
	{"search_subject", BranchSearchSubject},
	{"search_admission", BranchSearchAdmission},
	{"search_book", BranchSearchBook},
	{"search_service", BranchSearchService},
	{"llm_fallback", BranchFallback},
}

const classifierPrompt = `You are a routing classifier for a Korean high-school curriculum and admissions chatbot.
Classify the user question into exactly ONE of the following labels:

- search_policy: 고교학점제 운영, 제도, 졸업 요건, 교과 이수 기준 등 운영 문의
- search_subject: 과목 소개, 계열/진로별 추천 과목, 과목 선택 문의
- search_admission: 입시 전형, 대학/학과 소개 등 입시 연계 문의
- search_book: 진로 맞춤 도서 추천 문의
- search_service: 마이폴리오 서비스 이용, 시스템 오류 등 고객 문의
- llm_fallback: none of the above (greetings, thanks, general knowledge, off-topic)

Respond with the label only, nothing else.

Question: `

// Router decides which retrieval branch — or the non-retrieval fallback —
// handles a request. The decision is a total function of (question text,
// preselected category): every input maps to exactly one branch name.
type Router struct {
	llmProvider llm.LLMProvider
	timeout     time.Duration
	logger      *log.Logger
}

// New builds a router. timeout bounds each classification call; zero leaves
// the caller's deadline as is.
func New(llmProvider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Router {
	return &Router{
		llmProvider: llmProvider,
		timeout:     timeout,
		logger:      logger,
	}
}

// Route sets s.NextNode to the selected branch. A caller-preselected in-enum
// category overrides text classification; everything else is classified from
// the question text at temperature zero. Ambiguity resolves to the fallback
// branch, never to an error.
func (r *Router) Route(ctx context.Context, s *state.RequestState) error {
	if branch, ok := categoryBranches[s.Category]; ok {
		r.logger.Printf("[ROUTER] Preselected category %q -> %s", s.Category, branch)
		s.NextNode = branch
		return nil
	}

	branch := r.classify(ctx, s.Question)
	r.logger.Printf("[ROUTER] Classified question -> %s", branch)
	s.NextNode = branch
	s.Category = branchCategories[branch]
	return nil
}

func (r *Router) classify(ctx context.Context, question string) string {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	completion, err := r.llmProvider.Generate(ctx, classifierPrompt+question, llm.WithTemperature(0.0))
	if err != nil {
		r.logger.Printf("[ROUTER] Classification call failed, routing to fallback: %v", err)
		return BranchFallback
	}

	normalized := strings.ToLower(completion)
	for _, cl := range classifierLabels {
		if strings.Contains(normalized, cl.label) {
			return cl.branch
		}
	}

	r.logger.Printf("[ROUTER] Unrecognized classification %q, routing to fallback", truncate(completion, 40))
	return BranchFallback
}

// truncate shortens log output without splitting a multi-byte rune.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
