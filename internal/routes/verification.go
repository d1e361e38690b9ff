package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/backchair/storefront/internal/auth"
	"github.com/backchair/storefront/internal/identity"
	"github.com/backchair/storefront/internal/middleware"
	"github.com/backchair/storefront/internal/verification"
	"github.com/backchair/storefront/internal/webservice"
)

// flowOp runs one operation against a restored flow. A non-nil completion means
// the flow finished and a session must be started.
type flowOp func(c *fiber.Ctx, f *verification.Flow) (*completion, error)

// completion carries the authenticated user and, after registration, the
// password to store in the local directory.
type completion struct {
	user     verification.AuthenticatedUser
	password string
}

type verificationRoutes struct {
	services *verification.Services
	store    verification.Store
	ids      *identity.Service
	sessions *auth.Handler
	limiter  middleware.Limiter
	logger   *slog.Logger
}

type flowView struct {
	FlowID         string                   `json:"flow_id"`
	Step           verification.StepKind    `json:"step"`
	Identifier     string                   `json:"identifier,omitempty"`
	IdentifierType string                   `json:"identifier_type,omitempty"`
	KnownAccount   bool                     `json:"known_account"`
	Registrant     *verification.Registrant `json:"registrant,omitempty"`
	Session        *auth.SessionResponse    `json:"session,omitempty"`
}

// RegisterVerificationRoutes wires the step-by-step identity verification API.
// Every completed flow passes through a single session write in complete.
// Password attempts share the limiter bucket of /api/login for the same
// identifier.
func RegisterVerificationRoutes(r fiber.Router, services *verification.Services, store verification.Store, ids *identity.Service, sessions *auth.Handler, limiter middleware.Limiter, logger *slog.Logger) {
	h := &verificationRoutes{services: services, store: store, ids: ids, sessions: sessions, limiter: limiter, logger: logger}

	g := r.Group("/verification")
	g.Post("/", h.start)
	g.Get("/:flowId", h.show)
	g.Delete("/:flowId", h.discard)
	g.Post("/:flowId/reset", h.run(func(_ *fiber.Ctx, f *verification.Flow) (*completion, error) {
		f.Reset()
		return nil, nil
	}))
	g.Post("/:flowId/identifier", h.run(h.validateIdentifier))
	g.Post("/:flowId/method", h.run(h.chooseMethod))
	g.Post("/:flowId/method/change", h.run(func(_ *fiber.Ctx, f *verification.Flow) (*completion, error) {
		return nil, f.ChangeMethod()
	}))
	g.Post("/:flowId/code/send", h.run(func(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
		return nil, f.RequestOneTimeCode(c.UserContext())
	}))
	g.Post("/:flowId/code/verify", h.run(h.verifyCode))
	g.Post("/:flowId/password", h.run(h.submitPassword))
	g.Post("/:flowId/register", h.run(h.register))
	g.Post("/:flowId/register/confirm", h.run(h.confirmRegistration))
	g.Post("/:flowId/register/password", h.run(h.createPassword))
	g.Post("/:flowId/register/skip", h.run(func(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
		return done(f.SkipAndLogin(c.UserContext()))
	}))
}

func (h *verificationRoutes) start(c *fiber.Ctx) error {
	var req struct {
		Mode string `json:"mode"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
	}

	f := verification.NewFlow(h.services)
	switch strings.ToLower(req.Mode) {
	case "", "login":
	case "register":
		if err := f.BeginRegistration(); err != nil {
			return h.fail(err)
		}
	default:
		return fiber.NewError(http.StatusUnprocessableEntity, "mode must be login or register")
	}

	id, err := h.store.Create(c.UserContext(), f.Snapshot())
	if err != nil {
		return h.fail(err)
	}
	return c.Status(http.StatusCreated).JSON(viewOf(id, f, nil))
}

func (h *verificationRoutes) show(c *fiber.Ctx) error {
	id := c.Params("flowId")
	f, err := h.load(c, id)
	if err != nil {
		return h.fail(err)
	}
	return c.Status(http.StatusOK).JSON(viewOf(id, f, nil))
}

func (h *verificationRoutes) discard(c *fiber.Ctx) error {
	if err := h.store.Delete(c.UserContext(), c.Params("flowId")); err != nil {
		return h.fail(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// run loads the flow, applies op and saves the new snapshot. Failed operations
// leave the stored flow untouched.
func (h *verificationRoutes) run(op flowOp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("flowId")
		f, err := h.load(c, id)
		if err != nil {
			return h.fail(err)
		}
		result, err := op(c, f)
		if err != nil {
			return h.fail(err)
		}
		if err := h.store.Save(c.UserContext(), id, f.Snapshot()); err != nil {
			return h.fail(err)
		}

		var session *auth.SessionResponse
		if result != nil {
			if session, err = h.complete(c, *result); err != nil {
				return err
			}
		}
		return c.Status(http.StatusOK).JSON(viewOf(id, f, session))
	}
}

// complete records the customer locally once and writes the session cache once.
// A password chosen during registration is stored so later password logins work
// without the remote service.
func (h *verificationRoutes) complete(c *fiber.Ctx, result completion) (*auth.SessionResponse, error) {
	user := result.user
	if _, err := h.ids.Remember(c.UserContext(), user); err != nil {
		h.logger.Warn("remember customer", slog.String("user_id", user.ID), slog.Any("error", err))
	} else if result.password != "" {
		if err := h.ids.SetPassword(c.UserContext(), user.ID, result.password); err != nil {
			h.logger.Warn("store local password", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}
	token, err := h.sessions.StartSession(c, user)
	if err != nil {
		return nil, err
	}
	return &auth.SessionResponse{Token: token.Value, ExpiresAt: token.ExpiresAt, User: user.Public()}, nil
}

func (h *verificationRoutes) load(c *fiber.Ctx, id string) (*verification.Flow, error) {
	snap, err := h.store.Load(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	return verification.Restore(h.services, snap)
}

func (h *verificationRoutes) validateIdentifier(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadBody
	}
	return nil, f.ValidateIdentifier(c.UserContext(), req.Identifier)
}

func (h *verificationRoutes) chooseMethod(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
	var req struct {
		Method string `json:"method"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadBody
	}
	return nil, f.ChooseLoginMethod(c.UserContext(), verification.LoginMethod(strings.ToLower(req.Method)))
}

func (h *verificationRoutes) verifyCode(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadBody
	}
	return done(f.VerifyOneTimeCode(c.UserContext(), req.Code))
}

func (h *verificationRoutes) submitPassword(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadBody
	}
	if s, ok := f.Step().(verification.PasswordEntry); ok && h.limiter != nil {
		if err := middleware.CheckLoginAttempt(c.UserContext(), h.limiter, middleware.LoginKey(s.Identifier.Value), h.logger); err != nil {
			return nil, err
		}
	}
	return done(f.SubmitPassword(c.UserContext(), req.Password))
}

func (h *verificationRoutes) register(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadBody
	}
	return nil, f.Register(c.UserContext(), req.FirstName, req.LastName, req.Email, req.Phone)
}

func (h *verificationRoutes) confirmRegistration(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadBody
	}
	return nil, f.ConfirmRegistrationOtp(c.UserContext(), req.Code)
}

func (h *verificationRoutes) createPassword(c *fiber.Ctx, f *verification.Flow) (*completion, error) {
	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, errBadBody
	}
	user, err := f.CreatePassword(c.UserContext(), req.Password, req.ConfirmPassword)
	if err != nil {
		return nil, err
	}
	return &completion{user: user, password: req.Password}, nil
}

func done(user verification.AuthenticatedUser, err error) (*completion, error) {
	if err != nil {
		return nil, err
	}
	return &completion{user: user}, nil
}

func viewOf(id string, f *verification.Flow, session *auth.SessionResponse) flowView {
	v := flowView{FlowID: id, Step: f.Step().Kind(), Session: session}
	switch s := f.Step().(type) {
	case verification.MethodChoice:
		v.Identifier, v.IdentifierType, v.KnownAccount = s.Identifier.Value, string(s.Identifier.Type), s.KnownAccount()
	case verification.PasswordEntry:
		v.Identifier, v.IdentifierType, v.KnownAccount = s.Identifier.Value, string(s.Identifier.Type), s.Profile != nil
	case verification.OtpEntry:
		v.Identifier, v.IdentifierType, v.KnownAccount = s.Identifier.Value, string(s.Identifier.Type), s.Profile != nil
	case verification.RegisterOtp:
		reg := s.Registrant
		v.Registrant = &reg
	case verification.PasswordCreation:
		reg := s.Registrant
		v.Registrant = &reg
	case verification.Done:
		v.KnownAccount = true
	}
	return v
}

var errBadBody = fiber.NewError(http.StatusBadRequest, "invalid request body")

// fail maps flow errors onto HTTP responses. Remote messages are shown verbatim;
// transport details are only logged.
func (h *verificationRoutes) fail(err error) error {
	var (
		fe       *fiber.Error
		local    *verification.LocalValidationError
		stepErr  *verification.StepError
		rejected *webservice.RemoteRejection
	)
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.As(err, &local):
		return fiber.NewError(http.StatusUnprocessableEntity, local.Error())
	case errors.As(err, &rejected):
		return fiber.NewError(http.StatusBadRequest, rejected.Error())
	case webservice.IsTransport(err):
		h.logger.Error("identity service call failed", slog.Any("error", err))
		return fiber.NewError(http.StatusBadGateway, "identity service is unavailable, please try again")
	case errors.As(err, &stepErr):
		return fiber.NewError(http.StatusConflict, stepErr.Error())
	case errors.Is(err, verification.ErrFlowNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, verification.ErrSkipDisabled):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, verification.ErrPasswordLoginUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("verification flow failed", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}
