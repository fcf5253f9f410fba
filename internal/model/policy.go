package model

// Action names an operation subject to authorization.
type Action string

const (
	ActionBrowse               Action = "browse"
	ActionRequestReservation   Action = "reservation.request"
	ActionManageAmenities      Action = "amenity.manage"
	ActionDeleteAmenity        Action = "amenity.delete"
	ActionSetReservationStatus Action = "reservation.set_status"
	ActionCancelAnyReservation Action = "reservation.cancel_any"
	ActionViewAnyReservation   Action = "reservation.view_any"
)

var everyone = []Role{RoleResident, RoleAdministrator, RoleSuperAdmin}

var staff = []Role{RoleAdministrator, RoleSuperAdmin}

// capabilities is the whole authorization policy. Anything absent is denied.
var capabilities = map[Action][]Role{
	ActionBrowse:               everyone,
	ActionRequestReservation:   everyone,
	ActionManageAmenities:      staff,
	ActionDeleteAmenity:        {RoleSuperAdmin},
	ActionSetReservationStatus: staff,
	ActionCancelAnyReservation: staff,
	ActionViewAnyReservation:   staff,
}

// HasCapability reports whether actor may perform action.
func HasCapability(actor Actor, action Action) bool {
	for _, r := range capabilities[action] {
		if actor.Role == r {
			return true
		}
	}
	return false
}
