package rbac

// RolePermissions is the default policy. Students take exams and browse
// published material; teachers author content but cannot manage users
// or regrade; admins can do everything.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"attempt:*",
		"question:view",
		"curriculum:view",
		"course:view",
		"student:*",
		"activity:log",
	},
	"teacher": {
		"exam:view",
		"exam:create",
		"exam:update",
		"exam:delete",
		"attempt:*",
		"question:*",
		"curriculum:*",
		"course:*",
		"import:questions",
		"student:*",
		"activity:*",
	},
	"admin": {
		"*", // everything
	},
}
