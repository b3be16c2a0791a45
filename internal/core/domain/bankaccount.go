package domain

import (
	"errors"
	"time"
)

// AccountKind is the kind of bank account a nanny registers for payouts.
type AccountKind string

const (
	KindSavings  AccountKind = "savings"
	KindChecking AccountKind = "checking"
)

// ValidAccountKind reports whether k is a known account kind.
func ValidAccountKind(k AccountKind) bool {
	return k == KindSavings || k == KindChecking
}

var ErrNannyNotFound = errors.New("nanny not found")
var ErrBankAccountNotFound = errors.New("bank account not found")
var ErrDuplicateActiveAccount = errors.New("nanny already has an active bank account")

// BankAccount is a nanny's payout destination. A nanny holds at most one
// active account at any time; deletion only flips Active to false and no
// operation ever flips it back.
type BankAccount struct {
	ID            int64       `json:"id" bson:"_id"`
	NannyID       int64       `json:"nanny_id" bson:"nanny_id"`
	HolderName    string      `json:"holder_name" bson:"holder_name"`
	AccountNumber string      `json:"account_number" bson:"account_number"`
	BankName      string      `json:"bank_name" bson:"bank_name"`
	ClearingCode  string      `json:"clearing_code,omitempty" bson:"clearing_code,omitempty"`
	Kind          AccountKind `json:"kind" bson:"kind"`
	Active        bool        `json:"active" bson:"active"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" bson:"updated_at"`
}

// MaskAccountNumber truncates an account number for non-privileged display:
// the last four characters prefixed with "****", or a bare "****" when the
// number is shorter than four characters. Counts runes, so a multibyte
// character is never split.
func MaskAccountNumber(number string) string {
	runes := []rune(number)
	if len(runes) < 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}
