package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger zerolog.Logger) *ProductHandler {
	validate := validator.New()
	// Report validation failures under the JSON field names clients send.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ProductHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("handler", "product").Logger(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)
	router.Post("/products", h.HandleCreateProduct)
	router.Put("/products/:id", h.HandleUpdateProduct)
	router.Delete("/products/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID returns a single product or 404.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}

	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, fmt.Sprintf("Could not retrieve product %d", id))
	}
	return c.JSON(product)
}

// HandleCreateProduct stores a product with a caller-supplied id.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}
	if errs := h.validationErrors(input); errs != nil {
		return validationFailed(c, errs)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.logger, err, "Could not create product")
	}

	// Return the created product with a 201 Created status
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct overwrites every field of an existing product.
// The id may be omitted from the body; if present it must match the path.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}

	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}
	if input.ID != nil && *input.ID != id {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Code:    models.ErrCodeInvalidBody,
			Message: fmt.Sprintf("Body id %d does not match path id %d", *input.ID, id),
		})
	}
	input.ID = &id
	if errs := h.validationErrors(input); errs != nil {
		return validationFailed(c, errs)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, h.logger, err, fmt.Sprintf("Could not update product %d", id))
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}

	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, fmt.Sprintf("Could not delete product %d", id))
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %d deleted successfully", id),
	})
}

// validationErrors returns the failed fields keyed by JSON name, or nil when input is valid.
func (h *ProductHandler) validationErrors(input models.ProductInput) map[string]string {
	err := h.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"body": err.Error()}
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}

func validationFailed(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Code:    models.ErrCodeValidationFailed,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Code:    models.ErrCodeInvalidBody,
		Message: "Invalid request body",
		Error:   err.Error(),
	})
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Code:    models.ErrCodeInvalidID,
		Message: "Product id must be a positive integer",
	})
}

func productID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
