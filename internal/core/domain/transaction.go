package domain

import "time"

// TransactionState indicates the state of a committed transaction.
type TransactionState string

const (
	TransactionSuccessful TransactionState = "SC"
	TransactionRevoked    TransactionState = "RV"
)

// Transaction is the immutable record of a completed transfer between two
// accounts. It is created atomically with the balance mutation it represents;
// one is never observable without the other.
type Transaction struct {
	ID               string           `json:"id"` // Primary key (UUID)
	FromAccountIBAN  string           `json:"fromAccountIBAN"`
	ToAccountIBAN    string           `json:"toAccountIBAN"`
	Amount           Money            `json:"amount"`
	Purpose          string           `json:"purpose"` // Free text readable by the recipient, may be empty
	AuthorizedByUser string           `json:"authorizedByUser"`
	State            TransactionState `json:"state"`
	CreatedAt        time.Time        `json:"createdAt"`
}
