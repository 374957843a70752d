package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - ключ, по которому хранится *gorm.DB в context
	DBContextKey = contextKey("db")
	// UserIDContextKey - ID пользователя, подтвержденный провайдером идентичности
	UserIDContextKey = "userID"
	// UserRoleContextKey - роль пользователя из токена
	UserRoleContextKey = "userRole"
)
