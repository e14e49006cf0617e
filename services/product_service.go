package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Riyogosaki/Crystal/apperrors"
	"github.com/Riyogosaki/Crystal/models"
	"github.com/Riyogosaki/Crystal/repository"
	"github.com/Riyogosaki/Crystal/storage"
)

// CreateProductRequest carries a new catalog entry with its three
// images inlined as base64 data URLs.
type CreateProductRequest struct {
	Name        string
	Price       float64
	Description string
	FrontImage  string
	LeftImage   string
	RightImage  string
}

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ProductService implements the catalog store. Image upload to the
// object store is a side effect of creation; its failure fails the
// create.
type ProductService struct {
	repo   repository.ProductRepository
	images storage.ImageStore
	logger *zap.Logger
}

func NewProductService(repo repository.ProductRepository, images storage.ImageStore, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, images: images, logger: logger}
}

// Create uploads the three views and persists the catalog entry with
// the resulting URLs.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	id := uuid.NewString()

	urls := make(map[string]string, 3)
	for view, payload := range map[string]string{
		"front": req.FrontImage,
		"left":  req.LeftImage,
		"right": req.RightImage,
	} {
		contentType, data, err := decodeDataURL(payload)
		if err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid %s image: %v", view, err))
		}
		ext, ok := allowedImageTypes[contentType]
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("Unsupported image type %q", contentType))
		}

		key := fmt.Sprintf("product/%s-%s.%s", id, view, ext)
		url, err := s.images.Upload(ctx, key, contentType, data)
		if err != nil {
			s.logger.Error("image upload failed", zap.String("key", key), zap.Error(err))
			return nil, apperrors.Dependency("Error in Creating A Product", err)
		}
		urls[view] = url
	}

	product := &models.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Images: models.ProductImages{
			Front: urls["front"],
			Left:  urls["left"],
			Right: urls["right"],
		},
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.String("product_id", product.ID.Hex()))
	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid product id")
	}
	product, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, err
	}
	return product, nil
}

// Delete removes a catalog entry. Cart lines and historical orders
// referencing it are left alone; readers tolerate the dangling ids.
func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid product id")
	}
	product, err := s.repo.Delete(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, err
	}
	return product, nil
}

// decodeDataURL splits a "data:<type>;base64,<payload>" string. A bare
// base64 string is accepted as image/jpeg for older clients.
func decodeDataURL(raw string) (string, []byte, error) {
	contentType := "image/jpeg"
	payload := raw

	if strings.HasPrefix(raw, "data:") {
		meta, rest, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
		if !ok {
			return "", nil, errors.New("malformed data URL")
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = rest
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.New("invalid base64 payload")
	}
	if len(data) == 0 {
		return "", nil, errors.New("empty image")
	}
	return contentType, data, nil
}
