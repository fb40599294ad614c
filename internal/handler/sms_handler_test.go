package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smsdispatch/internal/ai"
	"smsdispatch/internal/gateway"
	"smsdispatch/internal/models"
	"smsdispatch/internal/repository"
	"smsdispatch/internal/service"
)

// stubDispatchRepo backs the dispatch service for handler tests
type stubDispatchRepo struct {
	nextKey int
	pending []*models.DispatchRecord
	sent    []*models.DispatchRecord
}

func (s *stubDispatchRepo) CreatePending(ctx context.Context, r *models.DispatchRecord) error {
	s.nextKey++
	r.SMSKey = s.nextKey
	s.pending = append(s.pending, r)
	return nil
}

func (s *stubDispatchRepo) CreateSent(ctx context.Context, r *models.DispatchRecord) error {
	s.nextKey++
	r.SMSKey = s.nextKey
	s.sent = append(s.sent, r)
	return nil
}

func (s *stubDispatchRepo) MarkSent(ctx context.Context, smsKey int, returnCode, returnMessage, messageID string) error {
	return nil
}

func (s *stubDispatchRepo) GetByID(ctx context.Context, smsKey int) (*models.DispatchRecord, error) {
	return nil, repository.ErrNotFound
}

func (s *stubDispatchRepo) ListPendingDue(ctx context.Context, now time.Time) ([]*models.DispatchRecord, error) {
	return nil, nil
}

func (s *stubDispatchRepo) Stats(ctx context.Context) (*models.DispatchStats, error) {
	return &models.DispatchStats{TotalCount: 5, SentCount: 3, PendingCount: 2, SuccessCount: 3}, nil
}

type stubCustomerRepo struct {
	phones []string
	rows   []map[string]string
}

func (s *stubCustomerRepo) GetPhoneNumbersByIDs(ctx context.Context, custIDs []int) ([]string, error) {
	if len(custIDs) == 0 {
		return nil, nil
	}
	return s.phones, nil
}

func (s *stubCustomerRepo) QueryCustomers(ctx context.Context, query string) ([]map[string]string, error) {
	return s.rows, nil
}

type stubGateway struct{}

func (s *stubGateway) Send(ctx context.Context, recipients []string, message string) (bool, gateway.Outcome) {
	return true, gateway.Outcome{ResultCode: gateway.ResultCodeOK, ResultText: "Success", MessageID: "MSG-1"}
}

// stubAIProvider echoes fixed completions for assistant tests
type stubAIProvider struct {
	reply string
}

func (s *stubAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return s.reply, nil
}

func newTestHandler(custRepo *stubCustomerRepo, provider ai.Provider) *SMSHandler {
	repo := &stubDispatchRepo{}
	svc := service.NewDispatchService(repo, custRepo, &stubGateway{}, nil, nil, 20, 70)

	var assistant *ai.Service
	if provider != nil {
		assistant = ai.NewService(provider)
	}

	return NewSMSHandler(svc, assistant, custRepo, service.NewMaskingService(), 70, 140)
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func TestHandleSend_Success(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{phones: []string{"0912345678"}}, nil)

	rec := postJSON(t, h.HandleSend, map[string]interface{}{
		"message_body": "hello",
		"customer_ids": []int{1},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result service.DispatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.SentCount != 1 || result.TotalBatches != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestHandleSend_NoRecipients(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{}, nil)

	rec := postJSON(t, h.HandleSend, map[string]interface{}{
		"message_body":     "hello",
		"extra_recipients": "12345",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", errResp.Error.Code)
	}
}

func TestHandleSchedule_Success(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{phones: []string{"0912345678"}}, nil)

	rec := postJSON(t, h.HandleSchedule, map[string]interface{}{
		"message_body":  "later",
		"customer_ids":  []int{1},
		"schedule_date": "2026-09-01 10:00:00",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result service.ScheduleResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.SMSKeys) != 1 {
		t.Errorf("sms_keys = %v", result.SMSKeys)
	}
}

func TestHandleSchedule_MalformedDate(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{phones: []string{"0912345678"}}, nil)

	rec := postJSON(t, h.HandleSchedule, map[string]interface{}{
		"message_body":  "later",
		"customer_ids":  []int{1},
		"schedule_date": "next tuesday",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleValidate(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{}, nil)

	rec := postJSON(t, h.HandleValidate, map[string]interface{}{
		"message_body": "hello",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var info service.LengthInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.Count != 5 || !info.IsValid || info.MaxLength != 70 {
		t.Errorf("info = %+v", info)
	}
}

func TestHandleGenerate_OutOfScope(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{}, &stubAIProvider{reply: "whatever"})

	rec := postJSON(t, h.HandleGenerate, map[string]interface{}{
		"prompt": "今天天氣如何",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleGenerate_Success(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{}, &stubAIProvider{reply: "限時優惠全館8折【AAA關心您】"})

	rec := postJSON(t, h.HandleGenerate, map[string]interface{}{
		"prompt": "夏季促銷活動",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Content == "" {
		t.Error("expected generated content")
	}
}

func TestHandleGenerate_NoProvider(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{}, nil)

	rec := postJSON(t, h.HandleGenerate, map[string]interface{}{"prompt": "促銷"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleQueryCustomers_MasksRows(t *testing.T) {
	custRepo := &stubCustomerRepo{rows: []map[string]string{
		{"cust_id": "1", "cust_name": "王小明", "mobile_number": "0912345678"},
	}}
	h := newTestHandler(custRepo, &stubAIProvider{reply: "SELECT cust_name, mobile_number FROM cust_info"})

	rec := postJSON(t, h.HandleQueryCustomers, map[string]interface{}{
		"query": "查詢所有客戶",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Count int                 `json:"count"`
		Rows  []map[string]string `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("count = %d", resp.Count)
	}
	if resp.Rows[0]["mobile_number"] != "091****678" {
		t.Errorf("mobile_number not masked: %q", resp.Rows[0]["mobile_number"])
	}
	if resp.Rows[0]["cust_name"] != "王*明" {
		t.Errorf("cust_name not masked: %q", resp.Rows[0]["cust_name"])
	}
}

func TestHandleStatistics(t *testing.T) {
	h := newTestHandler(&stubCustomerRepo{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/sms/statistics", nil)
	rec := httptest.NewRecorder()
	h.HandleStatistics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var stats models.DispatchStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.TotalCount != 5 || stats.SentCount != 3 {
		t.Errorf("stats = %+v", stats)
	}
}
