package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	PasswordHash []byte    `json:"-"`
	Name         string    `json:"name"`
	ProviderID   string    `json:"-"` // payment-provider payer identity
	CreatedAt    time.Time `json:"created_at"`
}

type AddressBookEntry struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Consignee string `json:"consignee"`
	Phone     string `json:"phone"`
	Detail    string `json:"detail"`
	IsDefault bool   `json:"is_default"`
}
