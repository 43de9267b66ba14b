package server

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/procurement"
	"github.com/gardenzilla/procurement/internal/service"
)

type createRequest struct {
	SourceID  uint32 `json:"source_id"`
	CreatedBy uint32 `json:"created_by"`
}

type referenceRequest struct {
	Reference string `json:"reference"`
}

type deliveryRequest struct {
	DeliveryDate string `json:"delivery_date"` // RFC 3339, empty clears.
}

type skuRequest struct {
	Sku   uint32 `json:"sku"`
	Piece uint32 `json:"piece"`
	Price uint32 `json:"price"`
}

type pieceRequest struct {
	Piece uint32 `json:"piece"`
}

type priceRequest struct {
	Price uint32 `json:"price"`
}

type uplRequest struct {
	UplID      string `json:"upl_id"`
	Sku        uint32 `json:"sku"`
	Piece      uint32 `json:"piece"`
	BestBefore string `json:"best_before"` // RFC 3339, empty for none.
}

type statusRequest struct {
	Status    string `json:"status"`
	CreatedBy uint32 `json:"created_by"`
}

// Runtime information reported by GET /status.
type statusResult struct {
	Running  bool   `json:"running"`
	Version  string `json:"version"`
	Pid      int    `json:"pid"`
	Uptime   string `json:"uptime"`
	Requests uint64 `json:"requests"`
}

func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               internal.Name,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/status", s.handleStatus)

	api := app.Group("/api/v1", s.countRequest)
	procurements := api.Group("/procurements")
	procurements.Post("/", s.handleCreate)
	procurements.Get("/", s.handleList)
	procurements.Get("/:id", s.handleGet)
	procurements.Delete("/:id", s.handleRemove)
	procurements.Put("/:id/reference", s.handleSetReference)
	procurements.Put("/:id/delivery", s.handleSetDelivery)
	procurements.Put("/:id/status", s.handleSetStatus)
	procurements.Post("/:id/skus", s.handleAddSku)
	procurements.Put("/:id/skus/:sku/piece", s.handleSetSkuPiece)
	procurements.Put("/:id/skus/:sku/price", s.handleSetSkuPrice)
	procurements.Delete("/:id/skus/:sku", s.handleRemoveSku)
	procurements.Post("/:id/upls", s.handleAddUpl)
	procurements.Put("/:id/upls/:upl", s.handleUpdateUpl)
	procurements.Delete("/:id/upls/:upl", s.handleRemoveUpl)

	return app
}

func (s *Server) countRequest(c *fiber.Ctx) error {
	s.requests.Add(1)
	return c.Next()
}

// Handles a status request.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(statusResult{
		Running:  true,
		Version:  internal.VersionString(),
		Pid:      os.Getpid(),
		Uptime:   time.Since(s.startedAt).Truncate(time.Second).String(),
		Requests: s.requests.Load(),
	})
}

func (s *Server) handleCreate(c *fiber.Ctx) error {
	var req createRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := s.service.CreateNew(req.SourceID, req.CreatedBy)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) handleList(c *fiber.Ctx) error {
	infos, err := s.service.GetAll()
	if err != nil {
		return err
	}
	return c.JSON(infos)
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	return respond(c)(s.service.GetByID(id))
}

func (s *Server) handleRemove(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.service.Remove(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSetReference(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req referenceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.SetReference(id, req.Reference))
}

func (s *Server) handleSetDelivery(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req deliveryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.SetDeliveryDate(id, req.DeliveryDate))
}

func (s *Server) handleSetStatus(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.SetStatus(id, req.Status, req.CreatedBy))
}

func (s *Server) handleAddSku(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req skuRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.AddSku(id, req.Sku, req.Piece, req.Price))
}

func (s *Server) handleSetSkuPiece(c *fiber.Ctx) error {
	id, sku, err := idAndSku(c)
	if err != nil {
		return err
	}
	var req pieceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.SetSkuPiece(id, sku, req.Piece))
}

func (s *Server) handleSetSkuPrice(c *fiber.Ctx) error {
	id, sku, err := idAndSku(c)
	if err != nil {
		return err
	}
	var req priceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.SetSkuPrice(id, sku, req.Price))
}

func (s *Server) handleRemoveSku(c *fiber.Ctx) error {
	id, sku, err := idAndSku(c)
	if err != nil {
		return err
	}
	return respond(c)(s.service.RemoveSku(id, sku))
}

func (s *Server) handleAddUpl(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req uplRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.AddUpl(id, req.UplID, req.Sku, req.Piece, req.BestBefore))
}

func (s *Server) handleUpdateUpl(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req uplRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return respond(c)(s.service.UpdateUpl(id, c.Params("upl"), req.Sku, req.Piece, req.BestBefore))
}

func (s *Server) handleRemoveUpl(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	return respond(c)(s.service.RemoveUpl(id, c.Params("upl")))
}

// Adapts a service result into a JSON response.
func respond(c *fiber.Ctx) func(*procurement.Procurement, error) error {
	return func(p *procurement.Procurement, err error) error {
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func idParam(c *fiber.Ctx) (uint32, error) {
	return uintParam(c, "id")
}

func idAndSku(c *fiber.Ctx) (uint32, uint32, error) {
	id, err := uintParam(c, "id")
	if err != nil {
		return 0, 0, err
	}
	sku, err := uintParam(c, "sku")
	if err != nil {
		return 0, 0, err
	}
	return id, sku, nil
}

func uintParam(c *fiber.Ctx, name string) (uint32, error) {
	v, err := c.ParamsInt(name)
	if err != nil || v < 0 || v > int(^uint32(0)) {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint32(v), nil
}

// Maps service error kinds to HTTP status codes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else {
		switch service.KindOf(err) {
		case service.KindNotFound:
			code = fiber.StatusNotFound
		case service.KindAlreadyExists:
			code = fiber.StatusConflict
		case service.KindBadRequest:
			code = fiber.StatusBadRequest
		}
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		slog.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
