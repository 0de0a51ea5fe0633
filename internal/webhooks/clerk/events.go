package clerkwebhook

import "encoding/json"

// Event types Clerk dispatches that we act on. Anything else is acknowledged
// and dropped.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is the outer Clerk webhook envelope.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EmailAddress is one entry of a Clerk user's email_addresses list.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserPayload carries the fields of Clerk's user object that we persist.
type UserPayload struct {
	ID                    string         `json:"id"`
	Username              *string        `json:"username"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
}

// DeletedPayload is the body of a user.deleted event.
type DeletedPayload struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// PrimaryEmail resolves the address referenced by primary_email_address_id.
// Falls back to the first listed address when the reference does not match.
func (p UserPayload) PrimaryEmail() (string, bool) {
	for _, addr := range p.EmailAddresses {
		if addr.ID == p.PrimaryEmailAddressID && addr.EmailAddress != "" {
			return addr.EmailAddress, true
		}
	}
	if len(p.EmailAddresses) > 0 && p.EmailAddresses[0].EmailAddress != "" {
		return p.EmailAddresses[0].EmailAddress, true
	}
	return "", false
}
