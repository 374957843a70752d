package models

import "sort"

// ServiceTag - стабильный целочисленный идентификатор семейства услуг.
// Значения хранятся в БД (таблица roles, история кредитов) и не должны меняться.
type ServiceTag int

const (
	// ServiceTagNone - событие не связано с конкретной услугой (покупка, истечение)
	ServiceTagNone             ServiceTag = 0
	ServiceTagCvSourcing       ServiceTag = 1000
	ServiceTagPrequalification ServiceTag = 2000
	ServiceTagDirect           ServiceTag = 3000
	ServiceTagLeadGeneration   ServiceTag = 4000
)

type serviceTagInfo struct {
	displayName string
	slug        string
	fkColumn    string
}

// serviceTags - единая таблица имен услуг для всех компонентов
var serviceTags = map[ServiceTag]serviceTagInfo{
	ServiceTagCvSourcing:       {displayName: "CV Sourcing", slug: "cv-sourcing", fkColumn: "cv_sourcing_role_id"},
	ServiceTagPrequalification: {displayName: "Prequalification", slug: "prequalification", fkColumn: "prequalification_role_id"},
	ServiceTagDirect:           {displayName: "360/Direct", slug: "direct", fkColumn: "direct_role_id"},
	ServiceTagLeadGeneration:   {displayName: "Lead Generation", slug: "lead-generation", fkColumn: "lead_generation_role_id"},
}

// IsValid - тег принадлежит одной из ролевых услуг
func (t ServiceTag) IsValid() bool {
	_, ok := serviceTags[t]
	return ok
}

// DisplayName - каноническое имя услуги
func (t ServiceTag) DisplayName() string {
	if info, ok := serviceTags[t]; ok {
		return info.displayName
	}
	return "Subscription"
}

func (t ServiceTag) Slug() string {
	return serviceTags[t].slug
}

// RoleFKColumn - колонка в таблице roles, указывающая на роль этой услуги
func (t ServiceTag) RoleFKColumn() string {
	return serviceTags[t].fkColumn
}

// AllServiceTags возвращает ролевые услуги в порядке возрастания тега
func AllServiceTags() []ServiceTag {
	tags := make([]ServiceTag, 0, len(serviceTags))
	for t := range serviceTags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// ParseServiceSlug - поиск тега по slug из URL
func ParseServiceSlug(slug string) (ServiceTag, bool) {
	for t, info := range serviceTags {
		if info.slug == slug {
			return t, true
		}
	}
	return ServiceTagNone, false
}
