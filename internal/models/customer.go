package models

import "time"

// Customer represents a row of cust_info
type Customer struct {
	CustID       int        `json:"cust_id" db:"cust_id"`
	CustName     *string    `json:"cust_name,omitempty" db:"cust_name"`
	Gender       *string    `json:"gender,omitempty" db:"gender"`
	MobileNumber *string    `json:"mobile_number,omitempty" db:"mobile_number"`
	HomeNumber   *string    `json:"home_number,omitempty" db:"home_number"`
	Address      *string    `json:"address,omitempty" db:"address"`
	Age          *int       `json:"age,omitempty" db:"age"`
	Birthday     *time.Time `json:"birthday,omitempty" db:"birthday"`
	Refuse       bool       `json:"refuse" db:"refuse"`
	CreateDate   time.Time  `json:"create_date" db:"create_date"`
}

// Contactable reports whether the customer may receive SMS messages:
// not contact-refused and a mobile number on file.
func (c *Customer) Contactable() bool {
	return !c.Refuse && c.MobileNumber != nil && *c.MobileNumber != ""
}
