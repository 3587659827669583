// Package policy decides which roles may invoke which scheduling operations.
//
// The table only answers the role question. Ownership (a patient cancelling
// their own appointment, a doctor deleting their own slot) is checked by the
// caller once the entity is loaded.
package policy

import "hospital-frontdesk-server/internal/models"

// Operation names one core operation.
type Operation string

const (
	SlotCreate        Operation = "slot.create"
	SlotDelete        Operation = "slot.delete"
	SlotListAvailable Operation = "slot.list_available"
	SlotListAll       Operation = "slot.list_all"

	AppointmentBook     Operation = "appointment.book"
	AppointmentCancel   Operation = "appointment.cancel"
	AppointmentComplete Operation = "appointment.complete"
	AppointmentRead     Operation = "appointment.read"
	PatientHistory      Operation = "patient.history"

	QueueStart    Operation = "queue.start"
	QueueAbsent   Operation = "queue.absent"
	QueueComplete Operation = "queue.complete"
	QueueView     Operation = "queue.view"
	QueueBoard    Operation = "queue.board"

	RoomManage Operation = "room.manage"
	RoomList   Operation = "room.list"
	RoomAssign Operation = "room.assign"
	RoomDelete Operation = "room.delete"
)

// Class groups operations by who they serve.
type Class string

const (
	SelfService    Class = "self_service"
	Administrative Class = "administrative"
	Clinical       Class = "clinical"
)

// Principal is the authenticated caller as seen by the core.
type Principal struct {
	UserID string
	Role   models.Role
}

// Is reports whether p is the user with the given id.
func (p Principal) Is(userID string) bool {
	return p.UserID != "" && p.UserID == userID
}

// Administrative reports whether p acts on behalf of the front desk.
func (p Principal) Administrative() bool {
	return p.Role == models.RoleStaff || p.Role == models.RoleAdmin
}

type roleSet map[models.Role]struct{}

func roles(rs ...models.Role) roleSet {
	s := make(roleSet, len(rs))
	for _, r := range rs {
		s[r] = struct{}{}
	}
	return s
}

type rule struct {
	class Class
	roles roleSet
}

var (
	everyone  = roles(models.RolePatient, models.RoleDoctor, models.RoleStaff, models.RoleAdmin)
	personnel = roles(models.RoleDoctor, models.RoleStaff, models.RoleAdmin)
	frontDesk = roles(models.RoleStaff, models.RoleAdmin)
)

var table = map[Operation]rule{
	SlotCreate:        {Clinical, personnel},
	SlotDelete:        {Clinical, roles(models.RoleDoctor)},
	SlotListAvailable: {SelfService, everyone},
	SlotListAll:       {Clinical, personnel},

	AppointmentBook:     {SelfService, roles(models.RolePatient, models.RoleStaff, models.RoleAdmin)},
	AppointmentCancel:   {SelfService, roles(models.RolePatient, models.RoleStaff, models.RoleAdmin)},
	AppointmentComplete: {Clinical, personnel},
	AppointmentRead:     {SelfService, everyone},
	PatientHistory:      {Clinical, personnel},

	QueueStart:    {Clinical, personnel},
	QueueAbsent:   {Administrative, frontDesk},
	QueueComplete: {Clinical, personnel},
	QueueView:     {Clinical, personnel},
	QueueBoard:    {Administrative, frontDesk},

	RoomManage: {Administrative, frontDesk},
	RoomList:   {Administrative, personnel},
	RoomAssign: {Administrative, roles(models.RoleAdmin)},
	RoomDelete: {Administrative, roles(models.RoleAdmin)},
}

// Authorize reports whether role may invoke op. Unknown operations and
// unknown roles are denied.
func Authorize(role models.Role, op Operation) bool {
	r, ok := table[op]
	if !ok {
		return false
	}
	_, ok = r.roles[role]
	return ok
}

// ClassOf returns the class of op, or "" if op is unknown.
func ClassOf(op Operation) Class {
	return table[op].class
}

// Operations lists every operation in the table.
func Operations() []Operation {
	ops := make([]Operation, 0, len(table))
	for op := range table {
		ops = append(ops, op)
	}
	return ops
}
