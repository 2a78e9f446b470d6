package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/onboarding-backend/internal/data/repos"
	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/catalog"
	"github.com/yungbote/onboarding-backend/internal/modules/onboarding/extract"
	"github.com/yungbote/onboarding-backend/internal/observability"
	"github.com/yungbote/onboarding-backend/internal/platform/apierr"
	"github.com/yungbote/onboarding-backend/internal/platform/ctxutil"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/gemini"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/pdfutil"
)

type PipelineState string

const (
	StateIdle       PipelineState = "idle"
	StateUploading  PipelineState = "uploading"
	StateCompleting PipelineState = "completing"
	StateExtracting PipelineState = "extracting"
	StatePersisting PipelineState = "persisting"
	StateDone       PipelineState = "done"
	StateFailed     PipelineState = "failed"
)

var allowedTransitions = map[PipelineState][]PipelineState{
	StateIdle:       {StateUploading, StateCompleting},
	StateUploading:  {StateCompleting, StateFailed},
	StateCompleting: {StateExtracting, StateFailed},
	StateExtracting: {StatePersisting},
	StatePersisting: {StateDone},
}

const (
	WorkflowAnalyzeDocument = "analyze_document"
	WorkflowGenerateQuiz    = "generate_quiz"
	WorkflowGeneratePlan    = "generate_study_plan"

	DefaultQuizQuestions = 5
	MaxQuizQuestions     = 10
)

type Transition struct {
	State PipelineState `json:"state"`
	At    time.Time     `json:"at"`
	Note  string        `json:"note,omitempty"`
}

// Run records one pass through the pipeline.
type Run struct {
	ID       uuid.UUID     `json:"id"`
	Workflow string        `json:"workflow"`
	State    PipelineState `json:"state"`
	Trace    []Transition  `json:"trace"`
	Degraded []string      `json:"degraded,omitempty"`
	Fallback bool          `json:"fallback"`
	Error    string        `json:"error,omitempty"`

	now func() time.Time
}

func newRun(workflow string, now func() time.Time) *Run {
	r := &Run{ID: uuid.New(), Workflow: workflow, State: StateIdle, now: now}
	r.Trace = []Transition{{State: StateIdle, At: now()}}
	return r
}

func (r *Run) advance(to PipelineState, note string) error {
	ok := false
	for _, s := range allowedTransitions[r.State] {
		if s == to {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("illegal pipeline transition %s -> %s", r.State, to)
	}
	r.State = to
	r.Trace = append(r.Trace, Transition{State: to, At: r.now(), Note: note})
	if to == StateDone || to == StateFailed {
		observability.Current().ObservePipelineRun(r.Workflow, string(to), r.Fallback)
	}
	return nil
}

func (r *Run) degrade(component string) {
	r.Degraded = append(r.Degraded, component)
	observability.Current().IncDegraded(component)
}

func (r *Run) fail(err error) error {
	if aerr := r.advance(StateFailed, err.Error()); aerr != nil {
		return errors.Join(err, aerr)
	}
	r.Error = err.Error()
	return err
}

// States lists the visited states in order.
func (r *Run) States() []PipelineState {
	out := make([]PipelineState, 0, len(r.Trace))
	for _, t := range r.Trace {
		out = append(out, t.State)
	}
	return out
}

// isTerminalCompletionError reports errors that end a run instead of routing
// to the fallback artifact.
func isTerminalCompletionError(err error) bool {
	return errors.Is(err, apierr.ErrAuthRequired) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

type UploadInput struct {
	FileName string
	Kind     types.FileKind
	MimeType string
	Data     []byte
}

type DocumentResult struct {
	Document types.Document `json:"document"`
	Run      *Run           `json:"run"`
}

type QuizResult struct {
	Quiz types.Quiz `json:"quiz"`
	Run  *Run       `json:"run"`
}

type PlanResult struct {
	Plan types.StudyPlan `json:"plan"`
	Run  *Run            `json:"run"`
}

type AnalyzeAllResult struct {
	Quiz *QuizResult `json:"quiz"`
	Plan *PlanResult `json:"plan"`
}

type PipelineService interface {
	AnalyzeDocument(ctx context.Context, in UploadInput) (*DocumentResult, error)
	GenerateQuiz(ctx context.Context, documentID uuid.UUID, questionCount int) (*QuizResult, error)
	GenerateStudyPlan(ctx context.Context, req types.PlanRequest, documentID *uuid.UUID) (*PlanResult, error)
	AnalyzeAll(ctx context.Context, documentID uuid.UUID, questionCount int, req types.PlanRequest) (*AnalyzeAllResult, error)
	Supersede(ownerID uuid.UUID, workflow string) bool
}

type PipelineConfig struct {
	UploadTimeout time.Duration
	MaxFileBytes  int64
}

type pipelineService struct {
	log       *logger.Logger
	completer gemini.Client
	extractor *extract.Extractor
	blobs     BlobStore
	mirror    gcp.DocumentMirror
	ocr       gcp.TextDetector
	repos     repos.Set
	cfg       PipelineConfig
	runs      *runTable
	now       func() time.Time
}

// NewPipelineService wires the content pipeline. blobs, mirror and ocr may be nil.
func NewPipelineService(
	log *logger.Logger,
	completer gemini.Client,
	extractor *extract.Extractor,
	blobs BlobStore,
	mirror gcp.DocumentMirror,
	ocr gcp.TextDetector,
	rs repos.Set,
	cfg PipelineConfig,
) PipelineService {
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 30 * time.Second
	}
	return &pipelineService{
		log:       log.With("service", "PipelineService"),
		completer: completer,
		extractor: extractor,
		blobs:     blobs,
		mirror:    mirror,
		ocr:       ocr,
		repos:     rs,
		cfg:       cfg,
		runs:      newRunTable(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (ps *pipelineService) runLogger(ctx context.Context, run *Run, owner uuid.UUID) *logger.Logger {
	log := ps.log.With("run_id", run.ID, "owner_id", owner, "workflow", run.Workflow)
	if reqID := ctxutil.RequestID(ctx); reqID != "" {
		log = log.With("request_id", reqID)
	}
	return log
}

func requireOwner(ctx context.Context) (uuid.UUID, error) {
	owner := ctxutil.OwnerID(ctx)
	if owner == uuid.Nil {
		return uuid.Nil, apierr.AuthRequired("request data not set in context")
	}
	return owner, nil
}

func (ps *pipelineService) Supersede(ownerID uuid.UUID, workflow string) bool {
	return ps.runs.cancel(ownerID, workflow)
}

func (ps *pipelineService) AnalyzeDocument(ctx context.Context, in UploadInput) (*DocumentResult, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := ps.validateUpload(in); err != nil {
		return nil, err
	}
	ctx, done := ps.runs.begin(ctx, owner, WorkflowAnalyzeDocument)
	defer done()

	run := newRun(WorkflowAnalyzeDocument, ps.now)
	log := ps.runLogger(ctx, run, owner)

	doc := types.Document{
		ID:         uuid.New(),
		OwnerID:    owner,
		FileName:   in.FileName,
		FileKind:   in.Kind,
		MimeType:   in.MimeType,
		ByteSize:   int64(len(in.Data)),
		UploadedAt: ps.now(),
	}

	if err := run.advance(StateUploading, doc.FileName); err != nil {
		return nil, err
	}
	if err := ps.upload(ctx, run, log, &doc, in); err != nil {
		ps.discardUpload(ctx, log, doc)
		return &DocumentResult{Document: doc, Run: run}, run.fail(err)
	}

	var prompt string
	var att *gemini.Attachment
	vars := map[string]string{"file_name": doc.FileName, "file_kind": string(doc.FileKind)}
	if doc.ExtractedText != "" {
		vars["content"] = doc.ExtractedText
		prompt = catalog.Render(ps.extractor.Catalog().Templates.Summary, vars)
	} else {
		prompt = catalog.Render(ps.extractor.Catalog().Templates.SummaryAttachment, vars)
		att = &gemini.Attachment{MimeType: in.MimeType, Data: in.Data}
	}

	raw, err := ps.complete(ctx, run, log, prompt, att)
	if err != nil {
		ps.discardUpload(ctx, log, doc)
		return &DocumentResult{Document: doc, Run: run}, run.fail(err)
	}

	summary := ps.extractor.Summary(raw)
	run.Fallback = summary.Fallback
	doc.Summary = summary.Value

	// The record is written once, complete; a run that ends earlier leaves
	// nothing behind.
	if err := run.advance(StatePersisting, ""); err != nil {
		return nil, err
	}
	if err := ps.repos.Documents.Create(ctx, doc); err != nil {
		ps.discardUpload(ctx, log, doc)
		return nil, fmt.Errorf("create document: %w", err)
	}
	ps.setPref(ctx, log, owner, repos.PrefSummary, doc.Summary)
	if doc.ExtractedText != "" {
		ps.setPref(ctx, log, owner, repos.PrefExtractedText, doc.ExtractedText)
	}
	ps.mirrorDocument(ctx, run, log, doc)

	if err := run.advance(StateDone, ""); err != nil {
		return nil, err
	}
	log.Info("Document analyzed", "document_id", doc.ID, "fallback", run.Fallback, "degraded", run.Degraded)
	return &DocumentResult{Document: doc, Run: run}, nil
}

func (ps *pipelineService) validateUpload(in UploadInput) error {
	if strings.TrimSpace(in.FileName) == "" {
		return apierr.Validation("file name is required")
	}
	if len(in.Data) == 0 {
		return apierr.Validation("file is empty")
	}
	if ps.cfg.MaxFileBytes > 0 && int64(len(in.Data)) > ps.cfg.MaxFileBytes {
		return apierr.Validation("file exceeds %d bytes", ps.cfg.MaxFileBytes)
	}
	if _, ok := types.ParseFileKind(string(in.Kind)); !ok {
		return apierr.Validation("unsupported file kind %q", in.Kind)
	}
	if strings.TrimSpace(in.MimeType) == "" {
		return apierr.Validation("mime type is required")
	}
	return nil
}

// upload stores the blob and extracts text concurrently: PDF text locally,
// image text through OCR. Store and OCR errors degrade; only cancellation and
// auth errors fail the run.
func (ps *pipelineService) upload(ctx context.Context, run *Run, log *logger.Logger, doc *types.Document, in UploadInput) error {
	var previewRef, text string
	var uploadErr, ocrErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if ps.blobs == nil {
			uploadErr = errors.New("object storage disabled")
			return nil
		}
		uctx, cancel := context.WithTimeout(gctx, ps.cfg.UploadTimeout)
		defer cancel()
		key := documentObjectKey(doc.OwnerID, doc.ID, doc.FileName)
		previewRef, uploadErr = ps.blobs.Upload(uctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), in.MimeType)
		return nil
	})
	if doc.FileKind == types.FileKindPDF {
		g.Go(func() error {
			extracted, err := pdfutil.ExtractText(in.Data)
			if err != nil {
				log.Warn("PDF text extraction failed", "error", err)
				return nil
			}
			text = extracted
			return nil
		})
	}
	if doc.FileKind != types.FileKindPDF && ps.ocr != nil {
		g.Go(func() error {
			text, ocrErr = ps.ocr.DetectText(gctx, in.Data, in.MimeType)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if uploadErr != nil {
		if errors.Is(uploadErr, apierr.ErrAuthRequired) {
			return uploadErr
		}
		degraded := apierr.UploadDegraded(uploadErr)
		log.Warn("Upload degraded to local-only", "error", degraded)
		run.degrade("upload")
		doc.LocalOnly = true
		previewRef = LocalPreviewRef(doc.ID, doc.FileName)
	}
	if ocrErr != nil {
		log.Warn("Image text detection failed", "error", ocrErr)
		run.degrade("ocr")
		text = ""
	}
	doc.PreviewRef = previewRef
	doc.ExtractedText = text
	return nil
}

// discardUpload removes the blob of a run that will not persist its document.
// It runs detached from ctx, which is usually the reason the run ended.
func (ps *pipelineService) discardUpload(ctx context.Context, log *logger.Logger, doc types.Document) {
	if ps.blobs == nil || doc.LocalOnly {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ps.cfg.UploadTimeout)
	defer cancel()
	if err := ps.blobs.Delete(dctx, documentObjectKey(doc.OwnerID, doc.ID, doc.FileName)); err != nil {
		log.Warn("Discarding uploaded blob failed", "document_id", doc.ID, "error", err)
	}
}

// complete runs Completing -> Extracting. A CompletionFailed error yields an
// empty raw string so the extractor falls back.
func (ps *pipelineService) complete(ctx context.Context, run *Run, log *logger.Logger, prompt string, att *gemini.Attachment) (string, error) {
	if err := run.advance(StateCompleting, ""); err != nil {
		return "", err
	}
	ctx, span := observability.Tracer("pipeline").Start(ctx, "completion."+run.Workflow)
	start := time.Now()
	raw, err := ps.completer.Complete(ctx, prompt, att)
	span.End()
	status := "ok"
	if err != nil {
		status = "failed"
	}
	observability.Current().ObserveCompletion(status, time.Since(start))
	if err != nil {
		if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
			return "", errors.Join(cerr, err)
		}
		if isTerminalCompletionError(err) {
			return "", err
		}
		log.Warn("Completion failed; using fallback", "error", err)
		raw = ""
	}
	if err := run.advance(StateExtracting, ""); err != nil {
		return "", err
	}
	return raw, nil
}

func (ps *pipelineService) setPref(ctx context.Context, log *logger.Logger, owner uuid.UUID, name, value string) {
	if err := ps.repos.Prefs.Set(ctx, owner, name, value); err != nil {
		log.Warn("Failed to store pref", "pref", name, "error", err)
	}
}

func (ps *pipelineService) mirrorDocument(ctx context.Context, run *Run, log *logger.Logger, doc types.Document) {
	if ps.mirror == nil {
		return
	}
	mctx, cancel := context.WithTimeout(ctx, ps.cfg.UploadTimeout)
	defer cancel()
	data := map[string]any{
		"ownerId":    doc.OwnerID.String(),
		"fileName":   doc.FileName,
		"fileKind":   string(doc.FileKind),
		"byteSize":   doc.ByteSize,
		"uploadedAt": doc.UploadedAt,
		"summary":    doc.Summary,
		"previewRef": doc.PreviewRef,
	}
	if err := ps.mirror.Upsert(mctx, repos.CollectionDocuments, doc.ID.String(), data); err != nil {
		log.Warn("Document mirror degraded", "error", apierr.UploadDegraded(err))
		run.degrade("mirror")
	}
}

// documentContent is the text quizzes and plans are generated from.
func documentContent(doc *types.Document) string {
	if doc == nil {
		return ""
	}
	if strings.TrimSpace(doc.ExtractedText) != "" {
		return doc.ExtractedText
	}
	if strings.TrimSpace(doc.Summary) != "" {
		return doc.Summary
	}
	return doc.FileName
}

func (ps *pipelineService) GenerateQuiz(ctx context.Context, documentID uuid.UUID, questionCount int) (*QuizResult, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if questionCount <= 0 {
		questionCount = DefaultQuizQuestions
	}
	if questionCount > MaxQuizQuestions {
		return nil, apierr.Validation("question count must be at most %d", MaxQuizQuestions)
	}
	doc, err := ps.repos.Documents.GetByID(ctx, owner, documentID)
	if err != nil {
		return nil, err
	}
	ctx, done := ps.runs.begin(ctx, owner, WorkflowGenerateQuiz)
	defer done()
	return ps.generateQuiz(ctx, owner, doc, questionCount)
}

func (ps *pipelineService) generateQuiz(ctx context.Context, owner uuid.UUID, doc *types.Document, questionCount int) (*QuizResult, error) {
	run := newRun(WorkflowGenerateQuiz, ps.now)
	log := ps.runLogger(ctx, run, owner)

	prompt := catalog.Render(ps.extractor.Catalog().Templates.Quiz, map[string]string{
		"question_count": strconv.Itoa(questionCount),
		"content":        documentContent(doc),
		"file_name":      doc.FileName,
	})
	raw, err := ps.complete(ctx, run, log, prompt, nil)
	if err != nil {
		return &QuizResult{Run: run}, run.fail(err)
	}
	res := ps.extractor.Quiz(raw)
	if res.Fallback && raw != "" {
		log.Warn("Quiz output rejected; using fallback", "reason", res.Reason)
	}
	run.Fallback = res.Fallback
	quiz := types.Quiz{
		ID:         uuid.New(),
		OwnerID:    owner,
		DocumentID: doc.ID,
		Questions:  res.Value,
		Fallback:   res.Fallback,
		CreatedAt:  ps.now(),
	}

	if err := run.advance(StatePersisting, ""); err != nil {
		return nil, err
	}
	if err := ps.repos.Quizzes.Replace(ctx, quiz); err != nil {
		return nil, fmt.Errorf("persist quiz: %w", err)
	}
	if err := run.advance(StateDone, ""); err != nil {
		return nil, err
	}
	log.Info("Quiz generated", "quiz_id", quiz.ID, "questions", len(quiz.Questions), "fallback", quiz.Fallback)
	return &QuizResult{Quiz: quiz, Run: run}, nil
}

func (ps *pipelineService) GenerateStudyPlan(ctx context.Context, req types.PlanRequest, documentID *uuid.UUID) (*PlanResult, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if req.Days > types.MaxPlanDays {
		return nil, apierr.Validation("days must be at most %d", types.MaxPlanDays)
	}
	var doc *types.Document
	if documentID != nil {
		if doc, err = ps.repos.Documents.GetByID(ctx, owner, *documentID); err != nil {
			return nil, err
		}
	}
	ctx, done := ps.runs.begin(ctx, owner, WorkflowGeneratePlan)
	defer done()
	return ps.generatePlan(ctx, owner, req, doc)
}

func (ps *pipelineService) generatePlan(ctx context.Context, owner uuid.UUID, req types.PlanRequest, doc *types.Document) (*PlanResult, error) {
	req = req.Normalize()
	run := newRun(WorkflowGeneratePlan, ps.now)
	log := ps.runLogger(ctx, run, owner)

	content := req.Goals
	if doc != nil {
		content = documentContent(doc)
	}
	goals := strings.TrimSpace(req.Goals)
	if goals == "" {
		goals = "get productive in the new role"
	}
	prompt := catalog.Render(ps.extractor.Catalog().Templates.StudyPlan, map[string]string{
		"days":           strconv.Itoa(req.Days),
		"start_date":     req.StartDate.Format("2006-01-02"),
		"time_available": strconv.Itoa(req.TimeAvailable),
		"learning_style": string(req.LearningStyle),
		"goals":          goals,
		"content":        content,
	})
	raw, err := ps.complete(ctx, run, log, prompt, nil)
	if err != nil {
		return &PlanResult{Run: run}, run.fail(err)
	}
	res := ps.extractor.StudyPlan(raw, req, content)
	if res.Fallback && raw != "" {
		log.Warn("Study plan output rejected; using fallback", "reason", res.Reason)
	}
	run.Fallback = res.Fallback
	plan := res.Value
	plan.OwnerID = owner
	if doc != nil {
		plan.DocumentID = doc.ID
	}

	if err := run.advance(StatePersisting, ""); err != nil {
		return nil, err
	}
	if err := ps.repos.StudyPlans.SetCurrent(ctx, plan); err != nil {
		return nil, fmt.Errorf("persist study plan: %w", err)
	}
	if err := run.advance(StateDone, ""); err != nil {
		return nil, err
	}
	log.Info("Study plan generated", "plan_id", plan.ID, "days", len(plan.Days), "fallback", plan.Fallback)
	return &PlanResult{Plan: plan, Run: run}, nil
}

// AnalyzeAll generates a quiz and a study plan from one document concurrently.
func (ps *pipelineService) AnalyzeAll(ctx context.Context, documentID uuid.UUID, questionCount int, req types.PlanRequest) (*AnalyzeAllResult, error) {
	owner, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := ps.repos.Documents.GetByID(ctx, owner, documentID)
	if err != nil {
		return nil, err
	}
	if questionCount <= 0 {
		questionCount = DefaultQuizQuestions
	}
	if questionCount > MaxQuizQuestions {
		return nil, apierr.Validation("question count must be at most %d", MaxQuizQuestions)
	}

	out := &AnalyzeAllResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qctx, done := ps.runs.begin(gctx, owner, WorkflowGenerateQuiz)
		defer done()
		res, err := ps.generateQuiz(qctx, owner, doc, questionCount)
		out.Quiz = res
		return err
	})
	g.Go(func() error {
		pctx, done := ps.runs.begin(gctx, owner, WorkflowGeneratePlan)
		defer done()
		res, err := ps.generatePlan(pctx, owner, req, doc)
		out.Plan = res
		return err
	})
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// runTable tracks the in-flight run per owner and workflow. Starting a new
// run cancels the previous one.
type runTable struct {
	mu      sync.Mutex
	entries map[string]runEntry
}

type runEntry struct {
	token  uuid.UUID
	cancel context.CancelFunc
}

func newRunTable() *runTable {
	return &runTable{entries: map[string]runEntry{}}
}

func runKey(owner uuid.UUID, workflow string) string {
	return owner.String() + "/" + workflow
}

func (t *runTable) begin(ctx context.Context, owner uuid.UUID, workflow string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	key := runKey(owner, workflow)
	token := uuid.New()

	t.mu.Lock()
	if prev, ok := t.entries[key]; ok {
		prev.cancel()
	}
	t.entries[key] = runEntry{token: token, cancel: cancel}
	t.mu.Unlock()

	return ctx, func() {
		t.mu.Lock()
		if cur, ok := t.entries[key]; ok && cur.token == token {
			delete(t.entries, key)
		}
		t.mu.Unlock()
		cancel()
	}
}

func (t *runTable) cancel(owner uuid.UUID, workflow string) bool {
	key := runKey(owner, workflow)
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, ok := t.entries[key]
	if ok {
		prev.cancel()
		delete(t.entries, key)
	}
	return ok
}
