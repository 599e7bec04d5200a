package clients

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shelfrate/shelfrate/pkg/errcodes"
)

type handler struct {
	clientService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListClientsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	clients, err := h.clientService.ListClients(ctx, ListClientsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Clients []*Client `json:"clients"`
	}{clients}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Client")
	}

	client, err := h.clientService.RetrieveClient(ctx, RetrieveClientOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, client))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateClientPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	client := &Client{Name: params.Name}
	if err := h.clientService.CreateClient(ctx, client); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, client))
}
