package domain

type Permission int

const (
	PermissionOwner  Permission = 1
	PermissionMember Permission = 2
)

func (p Permission) Valid() bool {
	return p == PermissionOwner || p == PermissionMember
}

const (
	RemovedFirstName = "Removed"
	RemovedLastName  = "user"
)

type User struct {
	ID            UserID
	FirstName     string
	LastName      string
	Email         string
	PasswordHash  string
	Handle        string
	Permission    Permission
	Removed       bool
	ProfileImgURL string
}

func (u *User) IsGlobalOwner() bool {
	return !u.Removed && u.Permission == PermissionOwner
}

// Anonymise blanks the profile in place. The id stays valid so message
// authorship and historical references keep resolving.
func (u *User) Anonymise() {
	u.FirstName = RemovedFirstName
	u.LastName = RemovedLastName
	u.Email = ""
	u.Handle = ""
	u.Permission = PermissionMember
	u.Removed = true
}
