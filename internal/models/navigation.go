package models

// NavItem is one entry of the side navigation.
type NavItem struct {
	Label string `json:"label" yaml:"label"`
	Route string `json:"route" yaml:"route"`
	Icon  string `json:"icon" yaml:"icon"`
}

// Navigation is the dashboard shell composed for one role.
type Navigation struct {
	Role     UserRole  `json:"role"`
	Home     string    `json:"home"`
	Items    []NavItem `json:"items"`
	UserMenu []NavItem `json:"userMenu"`
	User     UserInfo  `json:"user"`
}
