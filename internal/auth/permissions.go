package auth

// Operation names an access-controlled action.
type Operation string

const (
	OpViewDevices             Operation = "device:view"
	OpControlDevice           Operation = "device:control"
	OpControlRestrictedDevice Operation = "device:control:restricted"
	OpViewRooms               Operation = "room:view"
	OpBookRoom                Operation = "room:book"
	OpReleaseRooms            Operation = "room:release"
	OpRecordAttendance        Operation = "attendance:record"
	OpFullAttendanceReport    Operation = "attendance:report:all"
	OpAdminPanel              Operation = "admin:panel"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Operation{
	RoleEmployee: {
		OpViewDevices,
		OpControlDevice,
		OpViewRooms,
		OpBookRoom,
		OpRecordAttendance,
	},
	RoleManager: {
		OpViewDevices,
		OpControlDevice,
		OpControlRestrictedDevice,
		OpViewRooms,
		OpBookRoom,
		OpRecordAttendance,
		OpFullAttendanceReport,
	},
	RoleAdmin: {
		OpViewDevices,
		OpControlDevice,
		OpControlRestrictedDevice,
		OpViewRooms,
		OpBookRoom,
		OpReleaseRooms,
		OpRecordAttendance,
		OpFullAttendanceReport,
		OpAdminPanel,
	},
}

// Allowed reports whether role may perform op.
func Allowed(role Role, op Operation) bool {
	for _, granted := range rolePermissions[role] {
		if granted == op {
			return true
		}
	}
	return false
}

// OperationsFor returns a copy of the operations granted to role.
func OperationsFor(role Role) []Operation {
	ops := rolePermissions[role]
	if ops == nil {
		return nil
	}
	out := make([]Operation, len(ops))
	copy(out, ops)
	return out
}
