package model

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleCashier    Role = "cashier"
	RoleSeller     Role = "seller"
)

var Roles = []Role{RoleAdmin, RoleSupervisor, RoleCashier, RoleSeller}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	BaseModel
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
	IsActive     bool   `db:"is_active" json:"is_active"`
}
