package domain

import (
	"github.com/bwmarrin/snowflake"
	userdomain "github.com/smallbiznis/stripesync/internal/user/domain"
)

// RefKind discriminates how a caller identifies the customer it wants.
type RefKind int

const (
	RefByUserID RefKind = iota
	RefByEmail
	RefByCustomerID
	RefByUser
)

// Ref is a tagged reference to a customer. Construct it with one of the
// By* helpers and consume it with an exhaustive switch on Kind.
type Ref struct {
	Kind       RefKind
	UserID     snowflake.ID
	Email      string
	CustomerID string
	User       *userdomain.User
}

func ByUserID(id snowflake.ID) Ref {
	return Ref{Kind: RefByUserID, UserID: id}
}

func ByEmail(email string) Ref {
	return Ref{Kind: RefByEmail, Email: email}
}

func ByCustomerID(customerID string) Ref {
	return Ref{Kind: RefByCustomerID, CustomerID: customerID}
}

func ByUser(user *userdomain.User) Ref {
	return Ref{Kind: RefByUser, User: user}
}
