package models

// RoleIndexEntry - строка общей таблицы roles, зеркалирующая роль конкретной услуги.
// DisplayName всегда равен имени услуги, а не названию роли.
// ClientNo стабилен для пары (пользователь, услуга).
type RoleIndexEntry struct {
	BaseModelWithDeleted
	DisplayName            string     `gorm:"size:120;not null" json:"displayName"`
	ClientNo               int        `gorm:"not null;index:idx_roles_tag_client,priority:2" json:"clientNo"`
	ServiceTag             ServiceTag `gorm:"not null;index:idx_roles_tag_client,priority:1;index:idx_roles_user_tag,priority:2" json:"serviceTag"`
	UserID                 string     `gorm:"size:36;not null;index:idx_roles_user_tag,priority:1" json:"userId"`
	CvSourcingRoleID       *string    `gorm:"size:36;uniqueIndex" json:"cvSourcingRoleId,omitempty"`
	PrequalificationRoleID *string    `gorm:"size:36;uniqueIndex" json:"prequalificationRoleId,omitempty"`
	DirectRoleID           *string    `gorm:"size:36;uniqueIndex" json:"directRoleId,omitempty"`
	LeadGenerationRoleID   *string    `gorm:"size:36;uniqueIndex" json:"leadGenerationRoleId,omitempty"`
}

func (RoleIndexEntry) TableName() string {
	return "roles"
}

// SetRoleID - привязка записи к роли услуги по ее тегу
func (e *RoleIndexEntry) SetRoleID(tag ServiceTag, roleID string) {
	id := roleID
	switch tag {
	case ServiceTagCvSourcing:
		e.CvSourcingRoleID = &id
	case ServiceTagPrequalification:
		e.PrequalificationRoleID = &id
	case ServiceTagDirect:
		e.DirectRoleID = &id
	case ServiceTagLeadGeneration:
		e.LeadGenerationRoleID = &id
	}
}

// RoleID - id связанной роли услуги
func (e *RoleIndexEntry) RoleID() string {
	var ptr *string
	switch e.ServiceTag {
	case ServiceTagCvSourcing:
		ptr = e.CvSourcingRoleID
	case ServiceTagPrequalification:
		ptr = e.PrequalificationRoleID
	case ServiceTagDirect:
		ptr = e.DirectRoleID
	case ServiceTagLeadGeneration:
		ptr = e.LeadGenerationRoleID
	}
	if ptr == nil {
		return ""
	}
	return *ptr
}
