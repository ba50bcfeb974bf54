// internal/review/workflow.go
package review

import (
	"context"
	"strings"
	"sync"

	"comj-admin/internal/comj"
	"comj-admin/internal/common/errors"
	"comj-admin/internal/common/logger"
	"comj-admin/internal/resource"
)

// Document is one reviewable attachment with its resolved URL.
type Document struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Notifier receives review decisions once the API has accepted them.
type Notifier interface {
	NotifyDecision(ctx context.Context, applicationID, decision, comment string) error
}

// Workflow drives one application review at a time through an explicit state
// machine. Every move goes through the transition table; an illegal move is
// an error, not a silent flag flip.
type Workflow struct {
	client   *comj.Client
	notifier Notifier
	logger   logger.Logger

	// onStatusChange fires after any decision the API accepted.
	onStatusChange func()

	mu            sync.Mutex
	state         State
	applicationID string
	details       *comj.ApplicationDetails
	detailErr     error
	documents     []Document
	docIndex      int

	approve *resource.Mutation
	reject  *resource.Mutation
	enable  *resource.Mutation
}

// NewWorkflow creates a closed review workflow. notifier may be nil.
func NewWorkflow(client *comj.Client, notifier Notifier, onStatusChange func(), log logger.Logger) *Workflow {
	return &Workflow{
		client:         client,
		notifier:       notifier,
		onStatusChange: onStatusChange,
		logger:         log.WithFields(map[string]interface{}{"component": "review"}),
		state:          StateClosed,
		approve:        resource.NewMutation(),
		reject:         resource.NewMutation(),
		enable:         resource.NewMutation(),
	}
}

// Open starts reviewing an application: transitions Closed -> Viewing, resets
// every mutation outcome and the document index, then fetches the details.
// A detail fetch failure keeps the workflow open so the error can be shown.
func (w *Workflow) Open(ctx context.Context, applicationID string) error {
	w.mu.Lock()
	if !canTransition(w.state, StateViewing) || w.state != StateClosed {
		from := w.state
		w.mu.Unlock()
		return errors.NewReviewTransitionError(string(from), string(StateViewing))
	}
	w.state = StateViewing
	w.applicationID = applicationID
	w.details = nil
	w.detailErr = nil
	w.documents = nil
	w.docIndex = 0
	w.approve.Reset()
	w.reject.Reset()
	w.enable.Reset()
	w.mu.Unlock()

	w.fetchDetails(ctx)
	return nil
}

// Close abandons the review from any state and resets everything.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateClosed
	w.applicationID = ""
	w.details = nil
	w.detailErr = nil
	w.documents = nil
	w.docIndex = 0
	w.approve.Reset()
	w.reject.Reset()
	w.enable.Reset()
}

// RequestApprove opens the approval confirmation: Viewing -> ApproveConfirm.
func (w *Workflow) RequestApprove() error {
	return w.transition(StateViewing, StateApproveConfirm)
}

// CancelApprove backs out of the confirmation: ApproveConfirm -> Viewing.
func (w *Workflow) CancelApprove() error {
	return w.transition(StateApproveConfirm, StateViewing)
}

// ConfirmApprove runs the approve mutation. On success the details are
// re-fetched, the status-changed callback fires and the workflow returns to
// Viewing. On failure it stays in ApproveConfirm with the error recorded.
func (w *Workflow) ConfirmApprove(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateApproveConfirm {
		from := w.state
		w.mu.Unlock()
		return errors.NewReviewTransitionError(string(from), string(StateViewing))
	}
	applicationID := w.applicationID
	w.mu.Unlock()

	w.approve.Begin()
	if err := w.client.ApproveApplication(ctx, applicationID); err != nil {
		w.approve.Fail(err)
		return err
	}
	w.approve.Resolve()

	w.mu.Lock()
	w.state = StateViewing
	w.mu.Unlock()

	w.afterDecision(ctx, applicationID, "approved", "")
	return nil
}

// RequestReject opens the comment prompt: Viewing -> RejectComment.
func (w *Workflow) RequestReject() error {
	return w.transition(StateViewing, StateRejectComment)
}

// CancelReject backs out of the comment prompt: RejectComment -> Viewing.
func (w *Workflow) CancelReject() error {
	return w.transition(StateRejectComment, StateViewing)
}

// SubmitReject runs the reject mutation with the given comment. A blank
// comment never reaches the API. Success is the one and only way into
// EnableEditPrompt; on failure the workflow stays in RejectComment.
func (w *Workflow) SubmitReject(ctx context.Context, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return errors.NewValidationFailedError("comment", "O comentário de rejeição é obrigatório")
	}

	w.mu.Lock()
	if w.state != StateRejectComment {
		from := w.state
		w.mu.Unlock()
		return errors.NewReviewTransitionError(string(from), string(StateEnableEditPrompt))
	}
	applicationID := w.applicationID
	w.mu.Unlock()

	w.reject.Begin()
	if err := w.client.RejectApplication(ctx, applicationID, comment); err != nil {
		w.reject.Fail(err)
		return err
	}
	w.reject.Resolve()

	w.mu.Lock()
	w.state = StateEnableEditPrompt
	w.mu.Unlock()

	w.afterDecision(ctx, applicationID, "rejected", comment)
	return nil
}

// AcceptEnableEdit lets the applicant re-edit: runs the enable mutation and
// on success returns to Viewing. On failure it stays in the prompt.
func (w *Workflow) AcceptEnableEdit(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateEnableEditPrompt {
		from := w.state
		w.mu.Unlock()
		return errors.NewReviewTransitionError(string(from), string(StateViewing))
	}
	applicationID := w.applicationID
	w.mu.Unlock()

	w.enable.Begin()
	if err := w.client.EnableRejectedEdit(ctx, applicationID); err != nil {
		w.enable.Fail(err)
		return err
	}
	w.enable.Resolve()

	w.mu.Lock()
	w.state = StateViewing
	w.mu.Unlock()

	w.refetchAndNotify(ctx, applicationID)
	return nil
}

// DeclineEnableEdit closes the prompt with no network call.
func (w *Workflow) DeclineEnableEdit() error {
	return w.transition(StateEnableEditPrompt, StateViewing)
}

// NextDocument moves the viewer forward, clamped at the last document.
func (w *Workflow) NextDocument() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.docIndex < len(w.documents)-1 {
		w.docIndex++
	}
}

// PreviousDocument moves the viewer back, clamped at the first document.
func (w *Workflow) PreviousDocument() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.docIndex > 0 {
		w.docIndex--
	}
}

// State returns the current workflow state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// ApplicationID returns the application under review, empty when closed.
func (w *Workflow) ApplicationID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.applicationID
}

// Details returns the fetched application details, nil before the fetch
// completes or after a failed fetch.
func (w *Workflow) Details() *comj.ApplicationDetails {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.details
}

// DetailErr returns the last detail fetch error.
func (w *Workflow) DetailErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detailErr
}

// Documents returns the reviewable attachments, blanks already filtered out.
func (w *Workflow) Documents() []Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	docs := make([]Document, len(w.documents))
	copy(docs, w.documents)
	return docs
}

// DocumentIndex returns the active document position.
func (w *Workflow) DocumentIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.docIndex
}

// ApproveMutation exposes the approve operation state.
func (w *Workflow) ApproveMutation() *resource.Mutation { return w.approve }

// RejectMutation exposes the reject operation state.
func (w *Workflow) RejectMutation() *resource.Mutation { return w.reject }

// EnableEditMutation exposes the enable-re-edit operation state.
func (w *Workflow) EnableEditMutation() *resource.Mutation { return w.enable }

func (w *Workflow) transition(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != from || !canTransition(from, to) {
		return errors.NewReviewTransitionError(string(w.state), string(to))
	}
	w.state = to
	return nil
}

func (w *Workflow) fetchDetails(ctx context.Context) {
	details, err := w.client.GetApplicationByID(ctx, w.ApplicationID())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		// Closed while the fetch was in flight; drop the result.
		return
	}
	if err != nil {
		w.details = nil
		w.detailErr = err
		w.documents = nil
		w.docIndex = 0
		return
	}
	w.details = details
	w.detailErr = nil
	w.documents = buildDocuments(w.client, details)
	if w.docIndex >= len(w.documents) {
		w.docIndex = 0
	}
}

// afterDecision re-fetches the details, fires the status-changed callback and
// hands the decision to the notifier. Notification failures are logged only;
// the decision already stands server-side.
func (w *Workflow) afterDecision(ctx context.Context, applicationID, decision, comment string) {
	w.refetchAndNotify(ctx, applicationID)

	if w.notifier == nil {
		return
	}
	if err := w.notifier.NotifyDecision(ctx, applicationID, decision, comment); err != nil {
		w.logger.Warn("decision notification failed", map[string]interface{}{
			"applicationId": applicationID,
			"decision":      decision,
			"error":         err.Error(),
		})
	}
}

func (w *Workflow) refetchAndNotify(ctx context.Context, applicationID string) {
	w.fetchDetails(ctx)
	w.logger.Info("application status changed", map[string]interface{}{
		"applicationId": applicationID,
	})
	if w.onStatusChange != nil {
		w.onStatusChange()
	}
}

func buildDocuments(client *comj.Client, details *comj.ApplicationDetails) []Document {
	candidates := []Document{
		{Name: "Documento de Identificação", URL: details.DocumentIDCardURL},
		{Name: "Declaração de Remuneração", URL: details.DocumentSalaryDeclarationURL},
		{Name: "Extrato Bancário", URL: details.DocumentBankStatementURL},
		{Name: "Último Recibo Bancário", URL: details.DocumentLastBankReceiptURL},
	}

	docs := make([]Document, 0, len(candidates))
	for _, doc := range candidates {
		if doc.URL == "" {
			continue
		}
		doc.URL = client.ResolveURL(doc.URL)
		docs = append(docs, doc)
	}
	return docs
}
