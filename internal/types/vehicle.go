// README: Vehicle categories and account roles shared by pricing, orders and users.
package types

import "strings"

type VehicleType string

const (
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
	VehicleToktok     VehicleType = "TOKTOK"
	VehicleCar        VehicleType = "CAR"
)

// VehicleTypes lists every vehicle category the service prices.
var VehicleTypes = []VehicleType{VehicleMotorcycle, VehicleToktok, VehicleCar}

func (v VehicleType) Valid() bool {
	for _, known := range VehicleTypes {
		if v == known {
			return true
		}
	}
	return false
}

// ParseVehicleType normalises case; the result may still be invalid.
func ParseVehicleType(s string) VehicleType {
	return VehicleType(strings.ToUpper(strings.TrimSpace(s)))
}

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleDriver   Role = "DRIVER"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleDriver || r == RoleAdmin
}

// ParseRole normalises case; an empty string yields RoleCustomer.
func ParseRole(s string) Role {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return RoleCustomer
	}
	return Role(s)
}

// Actor identifies who triggers an operation.
type Actor struct {
	Role Role
	ID   ID
}
