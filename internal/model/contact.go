// Package model defines the records exchanged with the CRM backend.
package model

import "time"

// ContactStatus is the sales stage of a contact.
type ContactStatus string

const (
	StatusLead     ContactStatus = "Lead"
	StatusProspect ContactStatus = "Prospect"
	StatusCustomer ContactStatus = "Customer"
)

// ContactStatuses lists the known statuses in pipeline order.
var ContactStatuses = []ContactStatus{StatusLead, StatusProspect, StatusCustomer}

// String returns the string representation of the status.
func (s ContactStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is a known value.
func (s ContactStatus) IsValid() bool {
	switch s {
	case StatusLead, StatusProspect, StatusCustomer:
		return true
	}
	return false
}

// Contact is a person tracked by the CRM.
type Contact struct {
	ID        string        `json:"_id"`
	Name      string        `json:"name"`
	Email     string        `json:"email,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Company   string        `json:"company,omitempty"`
	Status    ContactStatus `json:"status,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// GetID returns the contact's server-assigned identifier.
func (c *Contact) GetID() string {
	if c == nil {
		return ""
	}
	return c.ID
}

// ContactInput is the attribute set sent on create and update.
type ContactInput struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Company string        `json:"company"`
	Status  ContactStatus `json:"status"`
	Notes   string        `json:"notes"`
}

// InputFromContact seeds an edit form from an existing contact.
// A missing status falls back to Lead.
func InputFromContact(c *Contact) ContactInput {
	in := ContactInput{Status: StatusLead}
	if c == nil {
		return in
	}
	in.Name = c.Name
	in.Email = c.Email
	in.Phone = c.Phone
	in.Company = c.Company
	in.Notes = c.Notes
	if c.Status != "" {
		in.Status = c.Status
	}
	return in
}
