package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"smsdispatch/internal/ai"
	"smsdispatch/internal/repository"
	"smsdispatch/internal/service"
)

// Accepted schedule timestamp layouts, tried in order.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SMSHandler handles dispatch, validation and assistant endpoints
type SMSHandler struct {
	dispatchService *service.DispatchService
	assistant       *ai.Service
	customerRepo    repository.CustomerRepository
	masking         *service.MaskingService
	maxLength       int
	maxLengthExt    int
}

// NewSMSHandler creates a new SMSHandler. assistant may be nil when no
// AI provider is configured; assistant endpoints return 503 then.
func NewSMSHandler(
	dispatchService *service.DispatchService,
	assistant *ai.Service,
	customerRepo repository.CustomerRepository,
	masking *service.MaskingService,
	maxLength, maxLengthExt int,
) *SMSHandler {
	return &SMSHandler{
		dispatchService: dispatchService,
		assistant:       assistant,
		customerRepo:    customerRepo,
		masking:         masking,
		maxLength:       maxLength,
		maxLengthExt:    maxLengthExt,
	}
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	MaxLength int    `json:"max_length,omitempty"`
}

// HandleGenerate handles POST /api/sms/generate
func (h *SMSHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "AI provider not configured")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteValidationError(w, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		WriteValidationError(w, "prompt is required")
		return
	}

	maxLength := req.MaxLength
	if maxLength <= 0 || maxLength > h.maxLengthExt {
		maxLength = h.maxLength
	}

	content, err := h.assistant.GenerateSMS(r.Context(), req.Prompt, maxLength)
	if errors.Is(err, ai.ErrOutOfScope) {
		WriteOutOfScopeError(w)
		return
	}
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, map[string]interface{}{
		"content": content,
		"length":  service.CheckLength(content, maxLength),
	})
}

type validateRequest struct {
	MessageBody string `json:"message_body"`
	Extended    bool   `json:"extended,omitempty"`
}

// HandleValidate handles POST /api/sms/validate
func (h *SMSHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteValidationError(w, "Invalid request body")
		return
	}

	maxLength := h.maxLength
	if req.Extended {
		maxLength = h.maxLengthExt
	}

	WriteOK(w, service.CheckLength(req.MessageBody, maxLength))
}

type parseQueryRequest struct {
	Query string `json:"query"`
}

// HandleParseQuery handles POST /api/query/parse
func (h *SMSHandler) HandleParseQuery(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "AI provider not configured")
		return
	}

	var req parseQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteValidationError(w, "Invalid request body")
		return
	}
	if req.Query == "" {
		WriteValidationError(w, "query is required")
		return
	}

	sqlQuery, err := h.assistant.ParseQuery(r.Context(), req.Query)
	if errors.Is(err, ai.ErrOutOfScope) {
		WriteOutOfScopeError(w)
		return
	}
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, map[string]string{"sql": sqlQuery})
}

// HandleQueryCustomers handles POST /api/customers/query: natural language
// in, masked customer rows out
func (h *SMSHandler) HandleQueryCustomers(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "AI provider not configured")
		return
	}

	var req parseQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteValidationError(w, "Invalid request body")
		return
	}
	if req.Query == "" {
		WriteValidationError(w, "query is required")
		return
	}

	sqlQuery, err := h.assistant.ParseQuery(r.Context(), req.Query)
	if errors.Is(err, ai.ErrOutOfScope) {
		WriteOutOfScopeError(w)
		return
	}
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	rows, err := h.customerRepo.QueryCustomers(r.Context(), sqlQuery)
	if err != nil {
		WriteValidationError(w, err.Error())
		return
	}

	for _, row := range rows {
		h.masking.MaskCustomerRow(row)
	}

	WriteOK(w, map[string]interface{}{
		"sql":   sqlQuery,
		"count": len(rows),
		"rows":  rows,
	})
}

type sendRequest struct {
	MessageClass    string `json:"message_class,omitempty"`
	MessageBody     string `json:"message_body"`
	CustomerIDs     []int  `json:"customer_ids,omitempty"`
	ExtraRecipients string `json:"extra_recipients,omitempty"`
	ScheduleDate    string `json:"schedule_date,omitempty"`
}

// HandleSend handles POST /api/sms/send
func (h *SMSHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteValidationError(w, "Invalid request body")
		return
	}

	result, err := h.dispatchService.SendNow(r.Context(), &service.DispatchRequest{
		MessageClass:    req.MessageClass,
		MessageBody:     req.MessageBody,
		CustomerIDs:     req.CustomerIDs,
		ExtraRecipients: req.ExtraRecipients,
	})
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, result)
}

// HandleSchedule handles POST /api/sms/schedule
func (h *SMSHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteValidationError(w, "Invalid request body")
		return
	}

	var scheduleDate *time.Time
	if req.ScheduleDate != "" {
		parsed, err := parseScheduleDate(req.ScheduleDate)
		if err != nil {
			WriteValidationError(w, "malformed schedule date")
			return
		}
		scheduleDate = &parsed
	}

	result, err := h.dispatchService.Schedule(r.Context(), &service.DispatchRequest{
		MessageClass:    req.MessageClass,
		MessageBody:     req.MessageBody,
		CustomerIDs:     req.CustomerIDs,
		ExtraRecipients: req.ExtraRecipients,
		ScheduleDate:    scheduleDate,
	})
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteCreated(w, result)
}

// HandleStatistics handles GET /api/sms/statistics
func (h *SMSHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dispatchService.Statistics(r.Context())
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, stats)
}

func parseScheduleDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range scheduleLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
