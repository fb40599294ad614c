package ai

import (
	"context"
	"fmt"
	"strings"

	"smsdispatch/internal/service"
)

// Sales keyword gate: generation is only offered for promotional copy.
var salesKeywords = []string{
	"銷售", "促銷", "優惠", "折扣", "特價", "活動", "推廣", "行銷", "廣告", "推銷",
}

// Data-modifying verbs are rejected before any model call.
var forbiddenQueryWords = []string{
	"刪除", "更新", "修改", "新增", "插入", "刪掉", "改掉", "增加",
}

const queryPromptSchema = `你是一個SQL查詢生成助手，請將使用者的自然語言查詢轉換為PostgreSQL查詢語句。

資料庫結構：
1. cust_info (客戶基本資料表):
   - cust_id: 客戶編號 (主鍵)
   - cust_name: 客戶姓名
   - gender: 性別
   - mobile_number: 行動電話
   - home_number: 住家電話
   - address: 地址
   - age: 年齡
   - birthday: 生日
   - refuse: 是否拒絕電話聯絡 (boolean)
   - create_date: 建立日期

2. order_master (訂單主檔):
   - order_no: 訂單編號 (主鍵)
   - order_date: 訂購日期
   - cust_id: 客戶編號 (外鍵)
   - amount: 訂單金額
   - pay_method: 付款方式 (1:現金, 2:信用卡, 3:轉帳)
   - delivery_address: 送貨地址
   - receiver: 收貨人
   - receiver_phone: 收貨人電話
   - order_type: 訂單類別 (1:一般, 2:預購)
   - taker_id: 接單人員編號
   - create_date: 建立日期

3. order_detail (訂單明細):
   - rowkey: 序號 (主鍵)
   - order_no: 訂單編號 (外鍵)
   - product_id: 產品編號
   - product_title: 產品名稱
   - unit_price: 單價
   - qty: 數量
   - batch_no: 批號

限制：
- 只能查詢上述三個表格
- 只能使用SELECT語句
- 必須返回客戶的電話號碼
- 查詢結果應包含客戶基本資訊

請直接回應SQL查詢語句，不要包含其他說明。

使用者查詢：`

// Service wraps a Provider with the guardrails both assistant features
// require: scope gating before the model call and output sanitizing after.
type Service struct {
	provider Provider
}

// NewService creates an assistant service over the given provider
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// GenerateSMS produces promotional copy within maxLength characters.
// Non-promotional prompts return ErrOutOfScope without a model call.
func (s *Service) GenerateSMS(ctx context.Context, prompt string, maxLength int) (string, error) {
	if !containsAny(strings.ToLower(prompt), salesKeywords) {
		return "", ErrOutOfScope
	}

	systemPrompt := fmt.Sprintf(`你是一個專業的簡訊文案撰寫助手，請根據使用者的需求生成簡潔有力的促銷簡訊。
要求：
1. 簡訊長度不超過%d個字（包含標點符號），但不得太簡短或少於%d個字
2. 內容要有吸引力且符合台灣用語習慣
3. 必須是銷售或促銷相關內容
4. 不要包含任何個人資訊
5. 使用繁體中文
6. 必需包含公司品牌名稱【AAA關心您】

使用者需求：%s

請直接回應簡訊內容，不要包含其他說明。`, maxLength, maxLength-15, prompt)

	content, err := s.provider.Complete(ctx, systemPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate sms content: %w", err)
	}

	// one shortening retry, then a hard truncate
	if info := service.CheckLength(content, maxLength); !info.IsValid {
		retryPrompt := fmt.Sprintf("%s\n\n請將以下內容縮短至%d字以內：%s", systemPrompt, maxLength, content)
		if retry, err := s.provider.Complete(ctx, retryPrompt); err == nil {
			content = retry
		}
	}
	if info := service.CheckLength(content, maxLength); !info.IsValid {
		content = truncateRunes(content, maxLength)
	}

	return content, nil
}

// ParseQuery converts a natural-language customer query into a SELECT
// statement. Requests containing data-modifying verbs return ErrOutOfScope.
func (s *Service) ParseQuery(ctx context.Context, naturalQuery string) (string, error) {
	if containsAny(naturalQuery, forbiddenQueryWords) {
		return "", ErrOutOfScope
	}

	raw, err := s.provider.Complete(ctx, queryPromptSchema+naturalQuery)
	if err != nil {
		return "", fmt.Errorf("failed to parse query: %w", err)
	}

	sqlQuery := stripCodeFences(raw)

	if !strings.HasPrefix(strings.ToUpper(sqlQuery), "SELECT") {
		return "", ErrOutOfScope
	}

	// the dispatch flow needs phone numbers in every result set
	if !strings.Contains(sqlQuery, "mobile_number") {
		if strings.Contains(sqlQuery, "FROM cust_info") {
			sqlQuery = strings.Replace(sqlQuery, "SELECT", "SELECT mobile_number, ", 1)
		}
	}

	return sqlQuery, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
