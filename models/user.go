package models

type Role int

const (
	RoleCustomer Role = 0
	RoleAdmin    Role = 1
)

type User struct {
	ID       string `json:"_id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"` // bcrypt hash
	Phone    string `json:"phone" bson:"phone"`
	Address  string `json:"address" bson:"address"`
	Answer   string `json:"-" bson:"answer"` // security question, plaintext
	Role     Role   `json:"role" bson:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
