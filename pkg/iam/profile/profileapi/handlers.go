package profileapi

import (
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/auth"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/profile"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/profile/profilesrv"
	"github.com/Abraxas-365/gatekeeper/pkg/iam/user"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const birthDateLayout = "2006-01-02"

// UpdateProfileRequest is the PATCH /users/me body
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,http_url,max=2048"`
	BirthDate *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
}

func (r UpdateProfileRequest) toInput() (profile.UpdateInput, error) {
	in := profile.UpdateInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		AvatarURL: r.AvatarURL,
	}
	if r.BirthDate != nil {
		t, err := time.Parse(birthDateLayout, *r.BirthDate)
		if err != nil {
			return in, err
		}
		in.BirthDate = &t
	}
	return in, nil
}

type Handlers struct {
	service  *profilesrv.ProfileService
	audit    auth.AuditService
	validate *validator.Validate
}

func NewHandlers(service *profilesrv.ProfileService, audit auth.AuditService) *Handlers {
	return &Handlers{
		service:  service,
		audit:    audit,
		validate: newValidator(),
	}
}

// RegisterRoutes mounts the profile, logout and admin routes on router.
// verify builds the assertion. It runs per route so unmatched paths fall
// through to the not-found handler whatever token they carry.
func (h *Handlers) RegisterRoutes(router fiber.Router, verify fiber.Handler, mw *auth.Middleware, reauthMaxAge time.Duration) {
	router.Get("/users/me", verify, mw.Protect(), h.GetMe)
	router.Patch("/users/me", verify, mw.Protect(), mw.RequireRecentAuth(reauthMaxAge), h.UpdateMe)

	router.Post("/auth/logout", verify, mw.Protect(), h.LogOut)

	router.Get("/admin/users", verify, mw.Protect(), mw.RequireRole(user.RoleAdmin), h.ListUsers)
}

func success(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func (h *Handlers) GetMe(c *fiber.Ctx) error {
	u, ok := auth.GetUser(c)
	if !ok {
		return errx.Unauthorized("")
	}

	current, err := h.service.GetProfile(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return success(c, "user profile", current)
}

func (h *Handlers) UpdateMe(c *fiber.Ctx) error {
	u, ok := auth.GetUser(c)
	if !ok {
		return errx.Unauthorized("")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Invalid request body").WithCause(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailure(err)
	}

	in, err := req.toInput()
	if err != nil {
		return errx.Validation("Invalid date at birthDate").WithCause(err)
	}

	updated, err := h.service.UpdateProfile(c.UserContext(), u.ID, in, u)
	if err != nil {
		return err
	}
	return success(c, "user profile updated", updated)
}

func (h *Handlers) LogOut(c *fiber.Ctx) error {
	a, _ := auth.GetAssertion(c)

	session, err := h.service.LogOut(c.UserContext(), a)
	if err != nil {
		return err
	}

	if u, ok := auth.GetUser(c); ok {
		h.audit.LogLogout(c.UserContext(), u.ID, a.SessionID, c.IP())
	}
	return success(c, "logged out", session)
}

func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	opts := kernel.PaginationOptions{
		Limit:  c.QueryInt("limit", kernel.DefaultPageLimit),
		Offset: c.QueryInt("offset", 0),
	}

	page, err := h.service.ListUsers(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return success(c, "users data", page)
}
