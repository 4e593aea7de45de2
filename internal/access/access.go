// Package access decides whether an actor may mutate a patient file.
package access

import "medflow-backend/internal/models"

// Actor is the authenticated user performing a request.
type Actor struct {
	ID       uint
	Username string
	Role     models.Role
}

// Authenticated reports whether the actor came from a valid session.
func (a Actor) Authenticated() bool {
	return a.ID != 0
}

// IsAdmin reports whether the actor holds the admin role. Unknown roles are
// treated as employee.
func (a Actor) IsAdmin() bool {
	return models.ParseRole(string(a.Role)) == models.RoleAdmin
}

// Operation is a mutating action on a patient file.
type Operation string

const (
	OpUpdateFields   Operation = "update-fields"
	OpUploadDocument Operation = "upload-document"
	OpDeleteDocument Operation = "delete-document"
	OpDeletePatient  Operation = "delete-patient"
	OpToggleLock     Operation = "toggle-lock"
)

// CanMutate reports whether actor may perform op on patient.
//
// Unlocked files are open to every authenticated actor; locked files only to
// admins. Changing the lock itself always requires an admin.
func CanMutate(actor Actor, patient models.Patient, op Operation) bool {
	if !actor.Authenticated() {
		return false
	}
	switch op {
	case OpToggleLock:
		return actor.IsAdmin()
	case OpUpdateFields, OpUploadDocument, OpDeleteDocument, OpDeletePatient:
		return !patient.IsLocked || actor.IsAdmin()
	default:
		return false
	}
}

// DenialMessage is the user-facing reason for a refused operation.
func DenialMessage(op Operation) string {
	switch op {
	case OpToggleLock:
		return "Only admins can lock or unlock files."
	case OpUploadDocument:
		return "File is locked. Cannot upload."
	case OpDeleteDocument:
		return "File is locked. Cannot delete."
	case OpDeletePatient:
		return "File is locked. Only admin can delete."
	default:
		return "File is locked. Only admin can edit."
	}
}
