package models

// Component is one row of the component reference table.
type Component struct {
	Name        string `json:"name"`
	Owner       string `json:"owner,omitempty"`
	Description string `json:"description,omitempty"`
}

// Milestone is one row of the milestone reference table. Due and
// Completed are unix seconds, zero when unset.
type Milestone struct {
	Name        string `json:"name"`
	Due         int64  `json:"due,omitempty"`
	Completed   int64  `json:"completed,omitempty"`
	Description string `json:"description,omitempty"`
}

// EnumValue is one key-value pair of the enum reference table (priority
// names, ticket types, severities and so on, keyed by enum type).
type EnumValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
