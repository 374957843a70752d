package auth

import "recruitportal_backend/internal/models"

// Разрешения, которые проверяет RequirePermission
const (
	PermissionRolesWrite      = "roles:write"
	PermissionResultsIngest   = "roles:results"
	PermissionPlansManage     = "plans:manage"
	PermissionLedgerAdmin     = "ledger:admin"
	PermissionIndexReconcile  = "index:reconcile"
	PermissionSubscriptionBuy = "subscription:buy"
)

// Permissions список разрешений по ролям
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermissionRolesWrite,
		PermissionResultsIngest,
		PermissionPlansManage,
		PermissionLedgerAdmin,
		PermissionIndexReconcile,
		PermissionSubscriptionBuy,
	},
	models.UserRoleClient: {
		PermissionRolesWrite,
		PermissionSubscriptionBuy,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
