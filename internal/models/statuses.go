package models

type UserRole string
type SubscriptionStatus string
type BillingCycle string
type CreditActionType string
type RoleStatus string

const (
	UserRoleClient UserRole = "client"
	UserRoleAdmin  UserRole = "admin"

	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
	BillingCycleAdhoc   BillingCycle = "adhoc"

	CreditActionUsed      CreditActionType = "used"
	CreditActionPurchased CreditActionType = "purchased"
	CreditActionRefunded  CreditActionType = "refunded"
	CreditActionExpired   CreditActionType = "expired"

	RoleStatusActive RoleStatus = "active"
	RoleStatusOnHold RoleStatus = "on_hold"
	RoleStatusFilled RoleStatus = "filled"
	RoleStatusClosed RoleStatus = "closed"
)

// subscriptionTransitions - допустимые переходы статусов записи реестра
var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusPending: {SubscriptionStatusActive, SubscriptionStatusCancelled},
	SubscriptionStatusActive:  {SubscriptionStatusExpired, SubscriptionStatusCancelled},
}

// CanTransitionTo проверяет переход по конечному автомату статусов.
// expired и cancelled - терминальные.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	for _, allowed := range subscriptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedSources возвращает статусы, из которых можно попасть в s
func (s SubscriptionStatus) AllowedSources() []SubscriptionStatus {
	var from []SubscriptionStatus
	for src, targets := range subscriptionTransitions {
		for _, t := range targets {
			if t == s {
				from = append(from, src)
			}
		}
	}
	return from
}

func (c BillingCycle) IsValid() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleAnnual, BillingCycleAdhoc:
		return true
	}
	return false
}

func (s RoleStatus) IsValid() bool {
	switch s {
	case RoleStatusActive, RoleStatusOnHold, RoleStatusFilled, RoleStatusClosed:
		return true
	}
	return false
}
