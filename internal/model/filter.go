package model

// ContactFilter holds criteria for listing contacts.
type ContactFilter struct {
	Search string        `json:"search,omitempty"` // matched against name, email and company
	Status ContactStatus `json:"status,omitempty"`
}

// ActivityFilter holds criteria for listing activities.
type ActivityFilter struct {
	Action ActivityAction `json:"action,omitempty"`
}
