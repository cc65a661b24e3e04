package router

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"unicode/utf8"

	"myfolio-chatbot-be/pkg/llm"
	"myfolio-chatbot-be/pkg/rag/state"
)

// fakeLLM returns a canned completion and records how often it was called.
type fakeLLM struct {
	completion string
	err        error
	calls      int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	return f.completion, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	return f.completion, f.err
}

func newTestRouter(provider llm.LLMProvider) *Router {
	return New(provider, 0, log.New(io.Discard, "", 0))
}

func TestRoutePreselectedCategory(t *testing.T) {
	tests := []struct {
		name       string
		category   state.Category
		wantBranch string
	}{
		{name: "policy", category: state.CategoryPolicy, wantBranch: BranchSearchPolicy},
		{name: "subject", category: state.CategorySubject, wantBranch: BranchSearchSubject},
		{name: "admission", category: state.CategoryAdmission, wantBranch: BranchSearchAdmission},
		{name: "book", category: state.CategoryBook, wantBranch: BranchSearchBook},
		{name: "service", category: state.CategoryService, wantBranch: BranchSearchService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeLLM{completion: "search_book"} // must not be consulted
			r := newTestRouter(provider)

			s := &state.RequestState{Question: "아무 질문", Category: tt.category}
			if err := r.Route(context.Background(), s); err != nil {
				t.Fatalf("Route returned error: %v", err)
			}

			if s.NextNode != tt.wantBranch {
				t.Errorf("NextNode = %q, want %q", s.NextNode, tt.wantBranch)
			}
			if provider.calls != 0 {
				t.Errorf("classifier was called %d times for a preselected category", provider.calls)
			}
		})
	}
}

func TestRouteClassifiesWhenUnspecified(t *testing.T) {
	tests := []struct {
		name         string
		completion   string
		wantBranch   string
		wantCategory state.Category
	}{
		{name: "plain label", completion: "search_subject", wantBranch: BranchSearchSubject, wantCategory: state.CategorySubject},
		{name: "label with noise", completion: "Label: SEARCH_ADMISSION.", wantBranch: BranchSearchAdmission, wantCategory: state.CategoryAdmission},
		{name: "fallback label", completion: "llm_fallback", wantBranch: BranchFallback, wantCategory: state.CategoryUnspecified},
		{name: "unrecognized output", completion: "과목을 골라드릴게요", wantBranch: BranchFallback, wantCategory: state.CategoryUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeLLM{completion: tt.completion})

			s := &state.RequestState{Question: "질문", Category: state.CategoryUnspecified}
			if err := r.Route(context.Background(), s); err != nil {
				t.Fatalf("Route returned error: %v", err)
			}

			if s.NextNode != tt.wantBranch {
				t.Errorf("NextNode = %q, want %q", s.NextNode, tt.wantBranch)
			}
			if s.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", s.Category, tt.wantCategory)
			}
		})
	}
}

func TestRouteClassifierErrorFallsBack(t *testing.T) {
	r := newTestRouter(&fakeLLM{err: errors.New("upstream down")})

	s := &state.RequestState{Question: "질문", Category: state.CategoryUnspecified}
	if err := r.Route(context.Background(), s); err != nil {
		t.Fatalf("Route returned error: %v", err)
	}

	if s.NextNode != BranchFallback {
		t.Errorf("NextNode = %q, want %q after classifier failure", s.NextNode, BranchFallback)
	}
}

func TestRouteIsTotal(t *testing.T) {
	// Whatever the classifier emits, Route must land on exactly one branch.
	for _, completion := range []string{"", "garbage", "search_policy search_book"} {
		r := newTestRouter(&fakeLLM{completion: completion})
		s := &state.RequestState{Question: "질문", Category: state.CategoryUnspecified}

		if err := r.Route(context.Background(), s); err != nil {
			t.Fatalf("Route(%q) returned error: %v", completion, err)
		}
		if s.NextNode == "" {
			t.Errorf("Route(%q) selected no branch", completion)
		}
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	got := truncate("고교학점제 졸업 요건이 궁금해요", 4)
	if got != "고교학점..." {
		t.Errorf("truncate = %q, want %q", got, "고교학점...")
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
}
