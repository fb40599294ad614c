package models

import (
	"strings"
	"time"
)

// Well-known message classes. MessageClass is free text and only
// informational; these are the values the built-in paths write.
const (
	ClassImmediate = "IMMEDIATE"
	ClassScheduled = "SCHEDULED"
)

// DispatchRecord is one row of sms_message: a single gateway batch,
// either pending (SendDate nil) or terminal (SendDate set, attempted
// exactly once).
type DispatchRecord struct {
	SMSKey        int        `json:"sms_key" db:"smskey"`
	MessageClass  string     `json:"message_class" db:"message_class"`
	MessageBody   string     `json:"message_body" db:"message_body"`
	RecipientNo   string     `json:"recipient_no" db:"recipient_no"`
	ScheduleDate  *time.Time `json:"schedule_date,omitempty" db:"schedule_date"`
	SendDate      *time.Time `json:"send_date,omitempty" db:"send_date"`
	ReturnCode    *string    `json:"return_code,omitempty" db:"return_code"`
	ReturnMessage *string    `json:"return_message,omitempty" db:"return_message"`
	MessageID     *string    `json:"message_id,omitempty" db:"message_id"`
	CreateDate    time.Time  `json:"create_date" db:"create_date"`
}

// Recipients splits the stored comma-joined recipient list.
func (r *DispatchRecord) Recipients() []string {
	if r.RecipientNo == "" {
		return nil
	}
	return strings.Split(r.RecipientNo, ",")
}

// IsPending reports whether no dispatch attempt has been recorded yet.
func (r *DispatchRecord) IsPending() bool {
	return r.SendDate == nil
}

// IsDue reports whether a pending record is eligible for dispatch at now.
func (r *DispatchRecord) IsDue(now time.Time) bool {
	if !r.IsPending() {
		return false
	}
	return r.ScheduleDate == nil || !r.ScheduleDate.After(now)
}

// DispatchStats summarizes the sms_message table
type DispatchStats struct {
	TotalCount   int `json:"total_count"`
	SentCount    int `json:"sent_count"`
	PendingCount int `json:"pending_count"`
	SuccessCount int `json:"success_count"`
}
