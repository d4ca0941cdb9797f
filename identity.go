package session

import "github.com/google/uuid"

// identityRecord is the plain Identity value used by providers and tests.
type identityRecord struct {
	id    string
	email string
}

// NewIdentity builds an Identity from its raw attributes.
func NewIdentity(id, email string) Identity {
	return identityRecord{id: id, email: email}
}

func (i identityRecord) ID() string {
	return i.id
}

func (i identityRecord) Email() string {
	return i.email
}

// AccountIdentity adapts an Account into the Identity interface.
type AccountIdentity struct {
	account *Account
}

// NewIdentityFromAccount returns an Identity adapter for the given account.
func NewIdentityFromAccount(account *Account) Identity {
	if account == nil {
		return nil
	}
	return AccountIdentity{account: account}
}

// ID returns the account id as a string.
func (a AccountIdentity) ID() string {
	if a.account == nil || a.account.ID == uuid.Nil {
		return ""
	}
	return a.account.ID.String()
}

// Email returns the account email.
func (a AccountIdentity) Email() string {
	if a.account == nil {
		return ""
	}
	return a.account.Email
}
