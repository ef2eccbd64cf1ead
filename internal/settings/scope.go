package settings

import "fmt"

// OwnerKind identifies the layer an override belongs to.
type OwnerKind uint8

const (
	// OwnerUser marks a user level override.
	OwnerUser OwnerKind = 1
	// OwnerAccount marks an account level override.
	OwnerAccount OwnerKind = 2
)

func (k OwnerKind) String() string {
	switch k {
	case OwnerUser:
		return "user"
	case OwnerAccount:
		return "account"
	default:
		return fmt.Sprintf("owner(%d)", uint8(k))
	}
}

// Scope is one owner whose overrides form a layer.
type Scope struct {
	Kind OwnerKind
	ID   uint64
}

func (s Scope) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// UserScope returns the scope of a user.
func UserScope(userID uint64) Scope { return Scope{Kind: OwnerUser, ID: userID} }

// AccountScope returns the scope of an account.
func AccountScope(accountID uint64) Scope { return Scope{Kind: OwnerAccount, ID: accountID} }

// Chain is an ordered list of scopes, most specific first. The catalog default is the
// implicit last layer.
type Chain []Scope

// UserChain resolves a user on its own.
func UserChain(userID uint64) Chain {
	return Chain{UserScope(userID)}
}

// AccountChain resolves an account on top of its owning user.
func AccountChain(userID, accountID uint64) Chain {
	return Chain{AccountScope(accountID), UserScope(userID)}
}

// Head returns the scope writes go to.
func (c Chain) Head() (Scope, error) {
	if len(c) == 0 {
		return Scope{}, ErrEmptyChain
	}

	return c[0], nil
}
