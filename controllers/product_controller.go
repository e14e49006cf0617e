package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/services"
)

// CreateProductRequest carries a new product with all three views
// inlined as base64 strings. Every field is required.
type CreateProductRequest struct {
	ProductName string  `json:"productname" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required"`
	FrontImage  string  `json:"frontImage" validate:"required"`
	LeftImage   string  `json:"leftImage" validate:"required"`
	RightImage  string  `json:"rightImage" validate:"required"`
}

type ProductController struct {
	products *services.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProductController(products *services.ProductService, logger *zap.Logger) *ProductController {
	return &ProductController{
		products: products,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create adds a catalog entry. Admin only; the three images are
// uploaded to the object store before the record is persisted.
func (pc *ProductController) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required (name + 3 images)"})
		return
	}
	if err := pc.validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required (name + 3 images)"})
		return
	}

	product, err := pc.products.Create(c.Request.Context(), services.CreateProductRequest{
		Name:        req.ProductName,
		Price:       req.Price,
		Description: req.Description,
		FrontImage:  req.FrontImage,
		LeftImage:   req.LeftImage,
		RightImage:  req.RightImage,
	})
	if err != nil {
		pc.logger.Error("product creation failed", zap.Error(err))
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": product})
}

// List returns the whole catalog.
func (pc *ProductController) List(c *gin.Context) {
	products, err := pc.products.List(c.Request.Context())
	if err != nil {
		pc.logger.Error("product list failed", zap.Error(err))
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": products})
}

// Get returns one product by id.
func (pc *ProductController) Get(c *gin.Context) {
	product, err := pc.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": product})
}

// Delete removes a product. Admin only.
func (pc *ProductController) Delete(c *gin.Context) {
	product, err := pc.products.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": product})
}
