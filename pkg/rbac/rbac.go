package rbac

// 权限常量
const (
	// 敏感操作权限
	PermissionEditPlan      = "project:edit_plan"
	PermissionDeleteProject = "project:delete"
	PermissionReplayEvents  = "outbox:replay"

	// 普通操作权限
	PermissionReadProject      = "project:read"
	PermissionCreateEntry      = "entry:create"
	PermissionSyncEntries      = "entry:sync"
	PermissionFlagRefusal      = "refusal:flag"
	PermissionRecordInspection = "inspection:record"
)

// 角色常量
const (
	RoleViewer  = "viewer"
	RoleForeman = "foreman"
	RoleAdmin   = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleViewer: {
		PermissionReadProject,
	},
	RoleForeman: {
		PermissionReadProject,
		PermissionCreateEntry,
		PermissionSyncEntries,
		PermissionFlagRefusal,
		PermissionRecordInspection,
	},
	RoleAdmin: {
		PermissionReadProject,
		PermissionCreateEntry,
		PermissionSyncEntries,
		PermissionFlagRefusal,
		PermissionRecordInspection,
		PermissionEditPlan,
		PermissionDeleteProject,
		PermissionReplayEvents,
	},
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查角色是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// ValidateUserIDInPayload 验证 payload 中的 user_id 是否与 token 中的 user_id 匹配
func ValidateUserIDInPayload(tokenUserID int, payloadUserID int) error {
	if payloadUserID != tokenUserID {
		return &UserIDMismatchError{
			TokenUserID:   tokenUserID,
			PayloadUserID: payloadUserID,
		}
	}
	return nil
}

// UserIDMismatchError 表示 user_id 不匹配的错误
type UserIDMismatchError struct {
	TokenUserID   int
	PayloadUserID int
}

func (e *UserIDMismatchError) Error() string {
	return "user_id in payload does not match token"
}
