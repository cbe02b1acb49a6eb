package middleware

import (
	"github.com/wellpass/wellpass-backend/internal/domain/user"
)

// AdminOnly guards the /admin routes.
var AdminOnly = RequireRoles(user.RolePlatformAdmin)
