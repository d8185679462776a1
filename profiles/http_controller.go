package profiles

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zelvyn/zelvyn-api"
)

// Controller serves /api/profiles. Listing and reading artist profiles is
// public, everything else needs a session and writes need ownership.
type Controller struct {
	Service *Service
	Auther  *auth.RouteAuthenticator
	Logger  auth.Logger
}

func NewController(service *Service, auther *auth.RouteAuthenticator, logger auth.Logger) *Controller {
	if service == nil {
		panic("Missing Service in profiles controller...")
	}
	if auther == nil {
		panic("Missing RouteAuthenticator in profiles controller...")
	}
	return &Controller{Service: service, Auther: auther, Logger: logger}
}

func (p *Controller) RegisterRoutes(router fiber.Router) {
	protected := p.Auther.ProtectedRoute()
	owner := p.Auther.AuthorizeOwner("userId")
	body := auth.RequireBody()

	router.Get("/artists", p.ListArtists).Name("profiles.artists.list")
	router.Get("/artists/:artistId", p.GetArtist).Name("profiles.artists.get")
	router.Post("/artists", protected, body, p.CreateArtist).Name("profiles.artists.create")
	router.Put("/artists/:userId", protected, owner, body, p.UpdateArtist).Name("profiles.artists.update")
	router.Delete("/artists/:userId", protected, owner, p.DeleteArtist).Name("profiles.artists.delete")

	router.Post("/customers", protected, body, p.CreateCustomer).Name("profiles.customers.create")
	router.Get("/customers/:userId", protected, owner, p.GetCustomer).Name("profiles.customers.get")
	router.Put("/customers/:userId", protected, owner, body, p.UpdateCustomer).Name("profiles.customers.update")
	router.Delete("/customers/:userId", protected, owner, p.DeleteCustomer).Name("profiles.customers.delete")
}

func (p *Controller) ListArtists(c *fiber.Ctx) error {
	return auth.WriteResult(c, p.Service.ListArtists(c.UserContext()))
}

func (p *Controller) GetArtist(c *fiber.Ctx) error {
	return auth.WriteResult(c, p.Service.GetArtist(c.UserContext(), c.Params("artistId")))
}

func (p *Controller) CreateArtist(c *fiber.Ctx) error {
	var msg CreateArtistMessage
	if err := c.BodyParser(&msg); err != nil {
		return p.badBody(c, err)
	}
	caller, _ := auth.CurrentUser(c)
	return auth.WriteResult(c, p.Service.CreateArtist(c.UserContext(), caller, msg))
}

func (p *Controller) UpdateArtist(c *fiber.Ctx) error {
	var msg UpdateArtistMessage
	if err := c.BodyParser(&msg); err != nil {
		return p.badBody(c, err)
	}
	return auth.WriteResult(c, p.Service.UpdateArtist(c.UserContext(), c.Params("userId"), msg))
}

func (p *Controller) DeleteArtist(c *fiber.Ctx) error {
	return auth.WriteResult(c, p.Service.DeleteArtist(c.UserContext(), c.Params("userId")))
}

func (p *Controller) CreateCustomer(c *fiber.Ctx) error {
	var msg CreateCustomerMessage
	if err := c.BodyParser(&msg); err != nil {
		return p.badBody(c, err)
	}
	caller, _ := auth.CurrentUser(c)
	return auth.WriteResult(c, p.Service.CreateCustomer(c.UserContext(), caller, msg))
}

func (p *Controller) GetCustomer(c *fiber.Ctx) error {
	return auth.WriteResult(c, p.Service.GetCustomer(c.UserContext(), c.Params("userId")))
}

func (p *Controller) UpdateCustomer(c *fiber.Ctx) error {
	var msg UpdateCustomerMessage
	if err := c.BodyParser(&msg); err != nil {
		return p.badBody(c, err)
	}
	return auth.WriteResult(c, p.Service.UpdateCustomer(c.UserContext(), c.Params("userId"), msg))
}

func (p *Controller) DeleteCustomer(c *fiber.Ctx) error {
	return auth.WriteResult(c, p.Service.DeleteCustomer(c.UserContext(), c.Params("userId")))
}

func (p *Controller) badBody(c *fiber.Ctx, err error) error {
	p.Logger.Debug("could not parse request body", "path", c.OriginalURL(), "error", err)
	return auth.WriteResult(c, auth.Fail(fiber.StatusBadRequest, "Invalid request body"))
}
