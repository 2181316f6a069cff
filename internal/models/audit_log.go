package models

// AuditLog records delegation changes and review decisions for compliance.
type AuditLog struct {
	Base
	ActorID      string `gorm:"not null;index" json:"actor_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"index" json:"resource_id"`
	ProjectID    string `gorm:"index" json:"project_id,omitempty"`
	Changes      string `json:"changes,omitempty"`
}
