package model

// CallQuota holds the per payment phone call accounting for one run.
type CallQuota struct {
	PaymentPhone string `json:"payment_phone"`
	Reports      int    `json:"reports"`
	Called       int    `json:"called"`
	Needed       int    `json:"needed"`
}
