package kernel

// UserID is the local user record id (uuid string).
type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

// SubjectID is the identity provider's user id, the "sub" claim.
type SubjectID string

func (s SubjectID) String() string { return string(s) }
func (s SubjectID) IsEmpty() bool  { return string(s) == "" }

// SessionID is the identity provider's session id, the "sid" claim.
type SessionID string

func (s SessionID) String() string { return string(s) }
func (s SessionID) IsEmpty() bool  { return string(s) == "" }
