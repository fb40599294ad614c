package gateway

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"
)

// submitRequest mirrors the gateway's SmsSubmitReq document. The gateway
// requires this exact element order; encoding/xml emits fields in struct
// order, so do not reorder.
type submitRequest struct {
	XMLName       xml.Name `xml:"SmsSubmitReq"`
	SysID         string   `xml:"SysId"`
	SrcAddress    string   `xml:"SrcAddress"`
	DestAddress   []string `xml:"DestAddress"`
	SmsBody       string   `xml:"SmsBody"`
	DrFlag        bool     `xml:"DrFlag"`
	FirstFailFlag bool     `xml:"FirstFailFlag"`
}

// responseField captures one direct child element of the response document
type responseField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// submitResponse reads any root element generically; the gateway's response
// schema is not pinned beyond the fields the client consumes.
type submitResponse struct {
	XMLName xml.Name
	Fields  []responseField `xml:",any"`
}

// Response field names consumed by the client
const (
	fieldResultCode = "ResultCode"
	fieldResultText = "ResultText"
	fieldMessageID  = "MessageId"
)

// BuildSubmitRequest encodes one batch as the gateway's XML submit document.
// The message body is carried base64-encoded (UTF-8 bytes), never as plaintext.
func BuildSubmitRequest(sysID, srcAddress string, recipients []string, message string, drFlag, firstFailFlag bool) ([]byte, error) {
	dest := make([]string, 0, len(recipients))
	for _, r := range recipients {
		dest = append(dest, strings.TrimSpace(r))
	}

	req := submitRequest{
		SysID:         sysID,
		SrcAddress:    srcAddress,
		DestAddress:   dest,
		SmsBody:       base64.StdEncoding.EncodeToString([]byte(message)),
		DrFlag:        drFlag,
		FirstFailFlag: firstFailFlag,
	}

	body, err := xml.MarshalIndent(req, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode submit request: %w", err)
	}

	return append([]byte(xml.Header), body...), nil
}

// ParseSubmitResponse parses the gateway response into a flat map of
// direct child element name to text content. Malformed XML is a decode
// failure, distinct from a gateway-reported error code.
func ParseSubmitResponse(data []byte) (map[string]string, error) {
	var resp submitResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	fields := make(map[string]string, len(resp.Fields))
	for _, f := range resp.Fields {
		fields[f.XMLName.Local] = strings.TrimSpace(f.Value)
	}

	return fields, nil
}
