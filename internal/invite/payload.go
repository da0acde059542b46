package invite

import (
	"fmt"

	"github.com/loopwell/invitekit/internal/settings"
	"github.com/loopwell/invitekit/pkg/apierrors"
)

// Source tags stamped on create-invitation requests and published events.
const (
	SourceEmail    = "email"
	SourceContacts = "contacts"
	SourceGoogle   = "google"
	SourceOther    = "other"
	SourceSMS      = "sms"
	SourceLink     = "link"
)

type payloadField struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type internalTargetValue struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type internalTarget struct {
	Type  string              `json:"type"`
	Value internalTargetValue `json:"value"`
}

type smsRecipient struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type smsTarget struct {
	Type  string         `json:"type"`
	Value []smsRecipient `json:"value"`
}

// EmailPayload targets one address:
//
//	{"invitee_email": {"value": "a@x.com", "type": "email"}}
func EmailPayload(address string) map[string]any {
	return map[string]any{
		"invitee_email": payloadField{Value: address, Type: "email"},
	}
}

// ContactPayload targets a contact with a display name alongside the
// address.
func ContactPayload(email, name string) map[string]any {
	payload := EmailPayload(email)
	if name != "" {
		payload["invitee_name"] = payloadField{Value: name, Type: "name"}
	}
	return payload
}

// InternalPayload targets an existing platform member by internal id, keyed
// by that same id:
//
//	{"<id>": {"type": "internal", "value": {"value": "<id>", "name": "..."}}}
func InternalPayload(internalID, name string) map[string]any {
	return map[string]any{
		internalID: internalTarget{
			Type:  "internal",
			Value: internalTargetValue{Value: internalID, Name: name},
		},
	}
}

// SMSPayload targets one phone number:
//
//	{"smsTarget": {"type": "sms", "value": [{"value": "+1555...", "name"?: "..."}]}}
func SMSPayload(phone, name string) map[string]any {
	return map[string]any{
		"smsTarget": smsTarget{
			Type:  "sms",
			Value: []smsRecipient{{Value: phone, Name: name}},
		},
	}
}

// ValidateEmail checks an address before it is dispatched.
func ValidateEmail(address string) error {
	if err := settings.GetValidator().Var(address, "required,email"); err != nil {
		return apierrors.NewValidationError("email", fmt.Sprintf("%q is not a valid address", address), err)
	}
	return nil
}

// ValidatePhone checks an E.164 phone number before it is dispatched.
func ValidatePhone(phone string) error {
	if err := settings.GetValidator().Var(phone, "required,e164"); err != nil {
		return apierrors.NewValidationError("phone", fmt.Sprintf("%q is not a valid E.164 number", phone), err)
	}
	return nil
}
