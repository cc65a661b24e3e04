package rag

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/repository/contract"
	"myfolio-chatbot-be/internal/repository/specification"
	"myfolio-chatbot-be/internal/repository/unitofwork"
	"myfolio-chatbot-be/pkg/embedding"
	"myfolio-chatbot-be/pkg/llm"
	"myfolio-chatbot-be/pkg/rag/generate"
	"myfolio-chatbot-be/pkg/rag/memory"
	"myfolio-chatbot-be/pkg/rag/retriever"
	"myfolio-chatbot-be/pkg/rag/router"
	"myfolio-chatbot-be/pkg/rag/state"
	"myfolio-chatbot-be/pkg/safety"

	"github.com/google/uuid"
)

// --- fakes ---

type fakeClassifier struct {
	flagged bool
	err     error
	calls   int
}

func (c *fakeClassifier) Flagged(ctx context.Context, text string) (bool, error) {
	c.calls++
	return c.flagged, c.err
}

// fakeLLM serves both the router (Generate) and the generators (Chat).
type fakeLLM struct {
	classifyLabel string
	answer        string
	answerErr     error
	classifyCalls int
	answerCalls   int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.classifyCalls++
	return f.classifyLabel, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.answerCalls++
	return f.answer, f.answerErr
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

// fakeKnowledgeRepo records which domains were searched and serves canned
// documents.
type fakeKnowledgeRepo struct {
	searchedDomains []string
	results         []*contract.ScoredKnowledgeDocument
}

func (r *fakeKnowledgeRepo) Create(ctx context.Context, doc *entity.KnowledgeDocument) error {
	return nil
}

func (r *fakeKnowledgeRepo) CreateBulk(ctx context.Context, docs []*entity.KnowledgeDocument) error {
	return nil
}

func (r *fakeKnowledgeRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeKnowledgeRepo) DeleteByDomain(ctx context.Context, domain string) error { return nil }

func (r *fakeKnowledgeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeDocument, error) {
	return nil, nil
}

func (r *fakeKnowledgeRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeDocument, error) {
	return nil, nil
}

func (r *fakeKnowledgeRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *fakeKnowledgeRepo) SearchSimilarByDomain(ctx context.Context, domain string, emb []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgeDocument, error) {
	r.searchedDomains = append(r.searchedDomains, domain)
	return r.results, nil
}

type fakeChatLogRepo struct{}

func (r *fakeChatLogRepo) Create(ctx context.Context, log *entity.ChatLog) error { return nil }

func (r *fakeChatLogRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error) {
	return nil, nil
}

func (r *fakeChatLogRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUow struct {
	knowledgeRepo *fakeKnowledgeRepo
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) KnowledgeDocumentRepository() contract.KnowledgeDocumentRepository {
	return u.knowledgeRepo
}

func (u *fakeUow) ChatLogRepository() contract.ChatLogRepository {
	return &fakeChatLogRepo{}
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeSink struct {
	calls int
}

func (s *fakeSink) Append(ctx context.Context, question, answer, userID, category string, documents []state.Document) error {
	s.calls++
	return nil
}

// --- fixture ---

type fixture struct {
	pipeline      *Pipeline
	classifier    *fakeClassifier
	provider      *fakeLLM
	embedder      *fakeEmbedder
	knowledgeRepo *fakeKnowledgeRepo
	memoryStore   *memory.CacheStore
	sink          *fakeSink
}

func newFixture(t *testing.T, classifier *fakeClassifier, provider *fakeLLM, results []*contract.ScoredKnowledgeDocument) *fixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	knowledgeRepo := &fakeKnowledgeRepo{results: results}
	uowFactory := &fakeUowFactory{uow: &fakeUow{knowledgeRepo: knowledgeRepo}}
	embedder := &fakeEmbedder{}
	memoryStore := memory.NewCacheStore(time.Minute, time.Minute)
	sink := &fakeSink{}

	retrievers := make(map[string]*retriever.Retriever, len(BranchDomains))
	for branch, domain := range BranchDomains {
		retrievers[branch] = retriever.New(domain, embedder, uowFactory, retriever.DefaultConfig(), logger)
	}

	pipeline, err := NewPipeline(
		safety.NewGate(classifier, logger),
		router.New(provider, 0, logger),
		retrievers,
		generate.New(provider, memoryStore, sink, 0, logger),
		logger,
	)
	if err != nil {
		t.Fatalf("NewPipeline returned error: %v", err)
	}

	return &fixture{
		pipeline:      pipeline,
		classifier:    classifier,
		provider:      provider,
		embedder:      embedder,
		knowledgeRepo: knowledgeRepo,
		memoryStore:   memoryStore,
		sink:          sink,
	}
}

func scoredDocs(contents ...string) []*contract.ScoredKnowledgeDocument {
	docs := make([]*contract.ScoredKnowledgeDocument, 0, len(contents))
	for _, content := range contents {
		docs = append(docs, &contract.ScoredKnowledgeDocument{
			Document:   &entity.KnowledgeDocument{Id: uuid.New(), Content: content},
			Similarity: 0.9,
		})
	}
	return docs
}

// --- scenarios ---

func TestPipelineFlaggedQuestionHasNoSideEffects(t *testing.T) {
	f := newFixture(t,
		&fakeClassifier{flagged: true},
		&fakeLLM{classifyLabel: "search_policy", answer: "답변"},
		scoredDocs("문서"),
	)

	s := &state.RequestState{Question: "욕설이 섞인 질문", UserID: "u1", Category: state.CategoryUnspecified}
	if err := f.pipeline.Run(context.Background(), s); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !s.Blocked {
		t.Error("Blocked = false, want true")
	}
	if s.Generation != "" {
		t.Errorf("Generation = %q, want empty for a denied request", s.Generation)
	}
	if len(s.Documents) != 0 {
		t.Errorf("retrieval ran for a denied request: %d documents", len(s.Documents))
	}
	if f.provider.classifyCalls != 0 || f.provider.answerCalls != 0 {
		t.Errorf("llm used for a denied request: classify=%d answer=%d", f.provider.classifyCalls, f.provider.answerCalls)
	}
	if len(f.knowledgeRepo.searchedDomains) != 0 {
		t.Errorf("index searched for a denied request: %v", f.knowledgeRepo.searchedDomains)
	}
	if turns, _ := f.memoryStore.Get(context.Background(), "u1"); len(turns) != 0 {
		t.Errorf("memory written for a denied request: %d turns", len(turns))
	}
	if f.sink.calls != 0 {
		t.Errorf("chat log written for a denied request: %d calls", f.sink.calls)
	}
}

func TestPipelineClassifierErrorDeniesFailClosed(t *testing.T) {
	f := newFixture(t,
		&fakeClassifier{err: errors.New("classifier down")},
		&fakeLLM{classifyLabel: "search_policy", answer: "답변"},
		nil,
	)

	s := &state.RequestState{Question: "무난한 질문", UserID: "u1", Category: state.CategoryUnspecified}
	if err := f.pipeline.Run(context.Background(), s); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !s.Blocked {
		t.Error("classifier failure did not deny the request")
	}
	if f.provider.answerCalls != 0 {
		t.Error("generator ran despite fail-closed denial")
	}
}

func TestPipelinePreselectedSubjectBypassesClassification(t *testing.T) {
	f := newFixture(t,
		&fakeClassifier{},
		&fakeLLM{classifyLabel: "search_policy", answer: "미적분 활동을 추천드려요."},
		scoredDocs("미적분 과목 안내"),
	)

	s := &state.RequestState{
		Question: "경영학과 가고 싶은데 미적분 뭐 쓰면 돼?",
		UserID:   "u1",
		Category: state.CategorySubject,
	}
	if err := f.pipeline.Run(context.Background(), s); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if f.provider.classifyCalls != 0 {
		t.Errorf("text classification ran despite preselected category: %d calls", f.provider.classifyCalls)
	}
	if got := f.knowledgeRepo.searchedDomains; len(got) != 1 || got[0] != "subject" {
		t.Errorf("searched domains = %v, want [subject]", got)
	}
	if s.Generation == "" {
		t.Error("no generation produced")
	}
	if len(s.Documents) != 1 {
		t.Errorf("Documents = %d, want 1", len(s.Documents))
	}
	if f.sink.calls != 1 {
		t.Errorf("chat log calls = %d, want 1", f.sink.calls)
	}
}

func TestPipelineGratitudeRoutesToFallback(t *testing.T) {
	f := newFixture(t,
		&fakeClassifier{},
		&fakeLLM{classifyLabel: "llm_fallback", answer: "감사합니다. 입시 관련 질문이 있다면 언제든지 물어봐주세요! 😊"},
		scoredDocs("문서"),
	)

	s := &state.RequestState{Question: "고마워요", UserID: "u1", Category: state.CategoryUnspecified}
	if err := f.pipeline.Run(context.Background(), s); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(f.knowledgeRepo.searchedDomains) != 0 {
		t.Errorf("fallback path searched the index: %v", f.knowledgeRepo.searchedDomains)
	}
	if s.Generation == "" {
		t.Error("no generation produced")
	}
	if s.Category != state.CategoryUnspecified {
		t.Errorf("Category = %q, want %q", s.Category, state.CategoryUnspecified)
	}
	if f.sink.calls != 1 {
		t.Errorf("chat log calls = %d, want 1", f.sink.calls)
	}
}

func TestPipelineZeroDocumentsStillGenerates(t *testing.T) {
	f := newFixture(t,
		&fakeClassifier{},
		&fakeLLM{classifyLabel: "search_admission", answer: "그건 제가 도와드릴 수 없는 부분이에요. 😰"},
		nil, // index returns nothing
	)

	s := &state.RequestState{Question: "한의대 전형 알려줘", UserID: "u1", Category: state.CategoryUnspecified}
	if err := f.pipeline.Run(context.Background(), s); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := f.knowledgeRepo.searchedDomains; len(got) != 1 || got[0] != "admission" {
		t.Errorf("searched domains = %v, want [admission]", got)
	}
	if len(s.Documents) != 0 {
		t.Errorf("Documents = %d, want 0", len(s.Documents))
	}
	if s.Generation == "" {
		t.Error("empty retrieval prevented generation")
	}
}

func TestPipelineGenerationFailureLeavesMemoryUntouched(t *testing.T) {
	f := newFixture(t,
		&fakeClassifier{},
		&fakeLLM{classifyLabel: "search_policy", answerErr: errors.New("completion timeout")},
		scoredDocs("문서"),
	)
	f.memoryStore.Append(context.Background(), "u1", memory.Turn{Role: memory.RoleUser, Content: "이전 질문"})

	s := &state.RequestState{Question: "졸업 요건이 뭐야?", UserID: "u1", Category: state.CategoryUnspecified}
	err := f.pipeline.Run(context.Background(), s)

	var genErr *generate.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Run error = %v, want wrapped *GenerationError", err)
	}

	turns, _ := f.memoryStore.Get(context.Background(), "u1")
	if len(turns) != 1 || turns[0].Content != "이전 질문" {
		t.Errorf("memory changed by failed generation: %+v", turns)
	}
	if f.sink.calls != 0 {
		t.Errorf("chat log written for failed generation: %d calls", f.sink.calls)
	}
}

func TestPipelineExactlyOneTerminal(t *testing.T) {
	tests := []struct {
		name       string
		classifier *fakeClassifier
		provider   *fakeLLM
		category   state.Category
	}{
		{name: "denied", classifier: &fakeClassifier{flagged: true}, provider: &fakeLLM{classifyLabel: "search_policy", answer: "답변"}, category: state.CategoryUnspecified},
		{name: "generated", classifier: &fakeClassifier{}, provider: &fakeLLM{classifyLabel: "search_policy", answer: "답변"}, category: state.CategoryUnspecified},
		{name: "fallback generated", classifier: &fakeClassifier{}, provider: &fakeLLM{classifyLabel: "llm_fallback", answer: "답변"}, category: state.CategoryUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.classifier, tt.provider, scoredDocs("문서"))

			s := &state.RequestState{Question: "질문", UserID: "u1", Category: tt.category}
			if err := f.pipeline.Run(context.Background(), s); err != nil {
				t.Fatalf("Run returned error: %v", err)
			}

			terminals := 0
			if s.Blocked {
				terminals++
			}
			if s.Generation != "" {
				terminals++
			}
			if terminals != 1 {
				t.Errorf("terminal outcomes = %d (blocked=%v, generation=%q), want exactly 1",
					terminals, s.Blocked, s.Generation)
			}
		})
	}
}

func TestNewPipelineRejectsMissingRetriever(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	provider := &fakeLLM{}
	memoryStore := memory.NewCacheStore(time.Minute, time.Minute)

	retrievers := map[string]*retriever.Retriever{} // none registered

	_, err := NewPipeline(
		safety.NewGate(&fakeClassifier{}, logger),
		router.New(provider, 0, logger),
		retrievers,
		generate.New(provider, memoryStore, &fakeSink{}, 0, logger),
		logger,
	)
	if err == nil {
		t.Error("NewPipeline accepted an empty retriever set")
	}
}
