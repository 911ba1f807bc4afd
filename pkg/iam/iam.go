package iam

// APIPrefix is where the IAM routes are mounted
const APIPrefix = "/api/v1"

// Route describes one mounted endpoint and the stages guarding it
type Route struct {
	Method string
	Path   string
	Guards string
}

// Routes lists the IAM endpoints in mount order.
func Routes() []Route {
	return []Route{
		{Method: "GET", Path: APIPrefix + "/users/me", Guards: "protect"},
		{Method: "PATCH", Path: APIPrefix + "/users/me", Guards: "protect, recent auth"},
		{Method: "POST", Path: APIPrefix + "/auth/logout", Guards: "protect"},
		{Method: "GET", Path: APIPrefix + "/admin/users", Guards: "protect, role admin"},
	}
}
