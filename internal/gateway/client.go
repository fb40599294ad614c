package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"smsdispatch/internal/config"
)

// Result codes the client synthesizes for failures that never produced a
// well-formed gateway response
const (
	// ResultCodeOK is the gateway's only success code
	ResultCodeOK = "00000"
	// CodeNetworkError covers transport-level failures (refused, timeout, DNS)
	CodeNetworkError = "NETWORK_ERROR"
	// CodeHTTPError covers non-200 HTTP responses
	CodeHTTPError = "HTTP_ERROR"
	// CodeSystemError covers decode failures and other unexpected errors
	CodeSystemError = "SYSTEM_ERROR"
)

// Outcome is the terminal result of one batch attempt. ResultText and
// MessageID may be empty on failure paths.
type Outcome struct {
	ResultCode string `json:"result_code"`
	ResultText string `json:"result_text"`
	MessageID  string `json:"message_id"`
}

// Success reports whether the outcome carries the gateway's success code
func (o Outcome) Success() bool {
	return o.ResultCode == ResultCodeOK
}

// Client performs the wire exchange with the SMS gateway for one batch
type Client struct {
	url           string
	sysID         string
	srcAddress    string
	drFlag        bool
	firstFailFlag bool
	httpClient    *http.Client
}

// NewClient creates a gateway client from the immutable gateway configuration
func NewClient(cfg config.GatewayConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		url:           cfg.URL,
		sysID:         cfg.SysID,
		srcAddress:    cfg.SrcAddress,
		drFlag:        cfg.DrFlag,
		firstFailFlag: cfg.FirstFailFlag,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Send performs exactly one network exchange for the batch and classifies
// the result. It never returns an error: every failure mode maps to a
// terminal Outcome with a synthetic result code.
func (c *Client) Send(ctx context.Context, recipients []string, message string) (bool, Outcome) {
	payload, err := BuildSubmitRequest(c.sysID, c.srcAddress, recipients, message, c.drFlag, c.firstFailFlag)
	if err != nil {
		return false, Outcome{
			ResultCode: CodeSystemError,
			ResultText: fmt.Sprintf("failed to build request: %v", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return false, Outcome{
			ResultCode: CodeSystemError,
			ResultText: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Gateway request failed: %v", err)
		return false, Outcome{
			ResultCode: CodeNetworkError,
			ResultText: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Gateway returned HTTP %d", resp.StatusCode)
		return false, Outcome{
			ResultCode: CodeHTTPError,
			ResultText: fmt.Sprintf("HTTP error: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, Outcome{
			ResultCode: CodeSystemError,
			ResultText: fmt.Sprintf("failed to read response: %v", err),
		}
	}

	fields, err := ParseSubmitResponse(body)
	if err != nil {
		log.Printf("Gateway response decode failed: %v", err)
		return false, Outcome{
			ResultCode: CodeSystemError,
			ResultText: fmt.Sprintf("system error: %v", err),
		}
	}

	outcome := Outcome{
		ResultCode: fields[fieldResultCode],
		ResultText: fields[fieldResultText],
		MessageID:  fields[fieldMessageID],
	}

	return outcome.Success(), outcome
}
