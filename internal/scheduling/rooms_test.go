package scheduling

import (
	"testing"
)

func TestRoomLifecycle(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.CreateRoom(f.ctx, f.staff, " S001 ", "Cardiology 1")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if r.Number != "S001" || !r.Available {
		t.Fatalf("unexpected room %+v", r)
	}

	_, err = f.svc.CreateRoom(f.ctx, f.staff, "S001", "")
	expectKind(t, err, ErrConflict)
	_, err = f.svc.CreateRoom(f.ctx, f.staff, "  ", "")
	expectKind(t, err, ErrValidation)
	_, err = f.svc.CreateRoom(f.ctx, f.patient, "S002", "")
	expectKind(t, err, ErrUnauthorized)

	d, err := f.svc.AssignRoom(f.ctx, f.admin, f.doctor.UserID, &r.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if d.RoomID == nil || *d.RoomID != r.ID || d.RoomNumber != "S001" {
		t.Fatalf("unexpected doctor summary %+v", d)
	}
	_, err = f.svc.AssignRoom(f.ctx, f.admin, f.patient.UserID, &r.ID)
	expectKind(t, err, ErrValidation)
	missing := "missing"
	_, err = f.svc.AssignRoom(f.ctx, f.admin, f.doctor.UserID, &missing)
	expectKind(t, err, ErrNotFound)

	rooms, err := f.svc.ListRooms(f.ctx, f.doctor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rooms) != 1 || len(rooms[0].Doctors) != 1 || rooms[0].Doctors[0].ID != f.doctor.UserID {
		t.Fatalf("unexpected rooms %+v", rooms)
	}

	closed, err := f.svc.SetRoomAvailability(f.ctx, f.staff, r.ID, false)
	if err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if closed.Available {
		t.Fatalf("room should be closed")
	}

	expectKind(t, f.svc.DeleteRoom(f.ctx, f.admin, r.ID), ErrConflict)
	expectKind(t, f.svc.DeleteRoom(f.ctx, f.staff, r.ID), ErrUnauthorized)

	if _, err := f.svc.AssignRoom(f.ctx, f.admin, f.doctor.UserID, nil); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if err := f.svc.DeleteRoom(f.ctx, f.admin, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectKind(t, f.svc.DeleteRoom(f.ctx, f.admin, r.ID), ErrNotFound)
}
