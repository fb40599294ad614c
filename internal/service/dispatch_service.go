package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"smsdispatch/internal/gateway"
	"smsdispatch/internal/models"
	"smsdispatch/internal/repository"
)

// GatewayClient performs one network exchange per batch
type GatewayClient interface {
	Send(ctx context.Context, recipients []string, message string) (bool, gateway.Outcome)
}

// EventPublisher publishes terminal batch outcomes for downstream systems.
// Publish failures must not fail a dispatch.
type EventPublisher interface {
	PublishDispatch(smsKey int, messageClass string, outcome gateway.Outcome, recipientCount int) error
}

// OutcomeCache stores successful outcomes for quick delivery lookups
type OutcomeCache interface {
	StoreOutcome(ctx context.Context, smsKey int, messageID string, sentAt time.Time) error
}

// DispatchService owns the dispatch flow: resolve recipients, batch them,
// drive batches through the gateway and record every attempt exactly once.
type DispatchService struct {
	dispatchRepo repository.DispatchRepository
	customerRepo repository.CustomerRepository
	client       GatewayClient
	publisher    EventPublisher // optional
	cache        OutcomeCache   // optional
	batchSize    int
	maxLength    int
}

// NewDispatchService creates a new dispatch service. publisher and cache
// may be nil when the corresponding backends are not configured.
func NewDispatchService(
	dispatchRepo repository.DispatchRepository,
	customerRepo repository.CustomerRepository,
	client GatewayClient,
	publisher EventPublisher,
	cache OutcomeCache,
	batchSize int,
	maxLength int,
) *DispatchService {
	if batchSize <= 0 {
		batchSize = 20
	}
	if maxLength <= 0 {
		maxLength = 70
	}

	return &DispatchService{
		dispatchRepo: dispatchRepo,
		customerRepo: customerRepo,
		client:       client,
		publisher:    publisher,
		cache:        cache,
		batchSize:    batchSize,
		maxLength:    maxLength,
	}
}

// DispatchRequest is a request to send or schedule a message
type DispatchRequest struct {
	MessageClass    string     `json:"message_class"`
	MessageBody     string     `json:"message_body"`
	CustomerIDs     []int      `json:"customer_ids"`
	ExtraRecipients string     `json:"extra_recipients"`
	ScheduleDate    *time.Time `json:"schedule_date,omitempty"`
}

// BatchOutcome is the per-batch result of an immediate dispatch
type BatchOutcome struct {
	SMSKey     int    `json:"sms_key"`
	Recipients int    `json:"recipients"`
	Success    bool   `json:"success"`
	ResultCode string `json:"result_code"`
	ResultText string `json:"result_text"`
	MessageID  string `json:"message_id,omitempty"`
}

// DispatchResult aggregates the per-batch outcomes of an immediate dispatch.
// Partial success is a normal result, not an error.
type DispatchResult struct {
	Batches      []BatchOutcome `json:"batches"`
	SentCount    int            `json:"sent_count"`
	TotalBatches int            `json:"total_batches"`
}

// ScheduleResult reports the records created by a deferred dispatch
type ScheduleResult struct {
	SMSKeys      []int `json:"sms_keys"`
	TotalBatches int   `json:"total_batches"`
}

// ResolveRecipients merges directory lookups with free-form extras into a
// deduplicated, validated recipient set. Invalid numbers are dropped, not
// fatal; an empty result is the caller's call to report.
func (s *DispatchService) ResolveRecipients(ctx context.Context, customerIDs []int, extra string) ([]string, error) {
	phones, err := s.customerRepo.GetPhoneNumbersByIDs(ctx, customerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer recipients: %w", err)
	}

	all := append(phones, ParsePhoneList(extra)...)
	merged := DedupePhones(all)

	valid, invalid := ValidatePhoneNumbers(merged)
	if len(invalid) > 0 {
		log.Printf("Dropping %d invalid phone numbers: %v", len(invalid), invalid)
	}

	return valid, nil
}

// SendNow resolves, batches and dispatches a message immediately. Every
// batch attempt is recorded terminal regardless of its outcome; the
// result reports per-batch outcomes plus an aggregate count.
func (s *DispatchService) SendNow(ctx context.Context, req *DispatchRequest) (*DispatchResult, error) {
	if err := s.validateBody(req.MessageBody); err != nil {
		return nil, err
	}

	recipients, err := s.ResolveRecipients(ctx, req.CustomerIDs, req.ExtraRecipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, &ValidationError{Message: "no valid recipients"}
	}

	messageClass := req.MessageClass
	if messageClass == "" {
		messageClass = models.ClassImmediate
	}

	chunks := ChunkRecipients(recipients, s.batchSize)
	result := &DispatchResult{
		Batches:      make([]BatchOutcome, 0, len(chunks)),
		TotalBatches: len(chunks),
	}

	for _, chunk := range chunks {
		success, outcome := s.client.Send(ctx, chunk, req.MessageBody)
		sendDate := time.Now()

		record := &models.DispatchRecord{
			MessageClass:  messageClass,
			MessageBody:   req.MessageBody,
			RecipientNo:   joinRecipients(chunk),
			SendDate:      &sendDate,
			ReturnCode:    &outcome.ResultCode,
			ReturnMessage: &outcome.ResultText,
		}
		if outcome.MessageID != "" {
			record.MessageID = &outcome.MessageID
		}

		if err := s.dispatchRepo.CreateSent(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to record dispatch attempt: %w", err)
		}

		if success {
			result.SentCount++
		}
		result.Batches = append(result.Batches, BatchOutcome{
			SMSKey:     record.SMSKey,
			Recipients: len(chunk),
			Success:    success,
			ResultCode: outcome.ResultCode,
			ResultText: outcome.ResultText,
			MessageID:  outcome.MessageID,
		})

		s.afterTerminal(ctx, record.SMSKey, messageClass, outcome, len(chunk), sendDate)
	}

	return result, nil
}

// Schedule resolves and batches a message for deferred dispatch; one
// pending record per batch, picked up later by the scheduler.
func (s *DispatchService) Schedule(ctx context.Context, req *DispatchRequest) (*ScheduleResult, error) {
	if err := s.validateBody(req.MessageBody); err != nil {
		return nil, err
	}

	recipients, err := s.ResolveRecipients(ctx, req.CustomerIDs, req.ExtraRecipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, &ValidationError{Message: "no valid recipients"}
	}

	messageClass := req.MessageClass
	if messageClass == "" {
		messageClass = models.ClassScheduled
	}

	chunks := ChunkRecipients(recipients, s.batchSize)
	result := &ScheduleResult{
		SMSKeys:      make([]int, 0, len(chunks)),
		TotalBatches: len(chunks),
	}

	for _, chunk := range chunks {
		record := &models.DispatchRecord{
			MessageClass: messageClass,
			MessageBody:  req.MessageBody,
			RecipientNo:  joinRecipients(chunk),
			ScheduleDate: req.ScheduleDate,
		}

		if err := s.dispatchRepo.CreatePending(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to create scheduled record: %w", err)
		}

		result.SMSKeys = append(result.SMSKeys, record.SMSKey)
	}

	log.Printf("Scheduled %d batch(es): sms_keys=%v", len(result.SMSKeys), result.SMSKeys)
	return result, nil
}

// ProcessDue runs one scheduler pass: every due pending row gets exactly
// one gateway attempt and turns terminal with the outcome, success or not.
// Per-row failures are logged and never stall the remaining rows.
// Cancellation is observed between rows only; once a row's gateway exchange
// has started it always reaches its terminal write, so shutdown never leaves
// a row pending after the gateway may have accepted it.
func (s *DispatchService) ProcessDue(ctx context.Context, now time.Time) (processed, total int, err error) {
	records, err := s.dispatchRepo.ListPendingDue(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list due records: %w", err)
	}

	for i, record := range records {
		if ctx.Err() != nil {
			log.Printf("Scheduler pass interrupted, %d row(s) deferred to next start", len(records)-i)
			break
		}

		rowCtx := context.WithoutCancel(ctx)

		success, outcome := s.client.Send(rowCtx, record.Recipients(), record.MessageBody)

		if err := s.dispatchRepo.MarkSent(rowCtx, record.SMSKey, outcome.ResultCode, outcome.ResultText, outcome.MessageID); err != nil {
			log.Printf("Failed to mark record %d sent: %v", record.SMSKey, err)
			continue
		}

		if success {
			processed++
		} else {
			log.Printf("Dispatch failed for record %d: %s - %s", record.SMSKey, outcome.ResultCode, outcome.ResultText)
		}

		s.afterTerminal(rowCtx, record.SMSKey, record.MessageClass, outcome, len(record.Recipients()), time.Now())
	}

	return processed, len(records), nil
}

// Statistics returns aggregate dispatch counts
func (s *DispatchService) Statistics(ctx context.Context) (*models.DispatchStats, error) {
	stats, err := s.dispatchRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch statistics: %w", err)
	}
	return stats, nil
}

// afterTerminal runs the optional side effects of a terminal outcome.
// Both are best-effort: failures are logged, never propagated.
func (s *DispatchService) afterTerminal(ctx context.Context, smsKey int, messageClass string, outcome gateway.Outcome, recipientCount int, sentAt time.Time) {
	if s.publisher != nil {
		if err := s.publisher.PublishDispatch(smsKey, messageClass, outcome, recipientCount); err != nil {
			log.Printf("Warning: failed to publish dispatch event for record %d: %v", smsKey, err)
		}
	}

	if s.cache != nil && outcome.Success() {
		if err := s.cache.StoreOutcome(ctx, smsKey, outcome.MessageID, sentAt); err != nil {
			log.Printf("Warning: failed to cache outcome for record %d: %v", smsKey, err)
		}
	}
}

func (s *DispatchService) validateBody(body string) error {
	if body == "" {
		return &ValidationError{Message: "message body is required"}
	}

	if info := CheckLength(body, s.maxLength); !info.IsValid {
		return &ValidationError{Message: fmt.Sprintf("message body exceeds %d characters", info.MaxLength)}
	}
	return nil
}

func joinRecipients(phones []string) string {
	return strings.Join(phones, ",")
}
