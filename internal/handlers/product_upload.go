package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxImageSize = 5 << 20 // 5MB

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// productFormInput carries parsed multipart fields. The Set flags let
// updates distinguish "field omitted" from "field set to zero value".
type productFormInput struct {
	Name            string
	NameSet         bool
	Description     string
	DescriptionSet  bool
	Price           float64
	PriceSet        bool
	Quantity        int
	QuantitySet     bool
	CollectionID    primitive.ObjectID
	CollectionIDSet bool
	Image           *multipart.FileHeader
}

func parseProductForm(c *gin.Context) (*productFormInput, error) {
	input := &productFormInput{}

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}
	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}
	if value, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.New("price must be a number")
		}
		if price <= 0 {
			return nil, errors.New("price must be greater than zero")
		}
		input.Price = price
		input.PriceSet = true
	}
	if value, ok := c.GetPostForm("quantity"); ok {
		quantity, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.New("quantity must be an integer")
		}
		if quantity < 0 {
			return nil, errors.New("quantity cannot be negative")
		}
		input.Quantity = quantity
		input.QuantitySet = true
	}
	if value, ok := c.GetPostForm("collection"); ok {
		collectionID, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			return nil, errors.New("invalid collection id")
		}
		input.CollectionID = collectionID
		input.CollectionIDSet = true
	}

	file, err := c.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		return nil, errors.New("could not read image upload")
	}
	if file != nil {
		if err := validateImageUpload(file); err != nil {
			return nil, err
		}
		input.Image = file
	}

	return input, nil
}

func validateImageUpload(file *multipart.FileHeader) error {
	if file.Size > maxImageSize {
		return fmt.Errorf("image exceeds the %dMB limit", maxImageSize>>20)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return fmt.Errorf("unsupported image type %q", ext)
	}
	return nil
}

// validateNewProduct checks the fields a create cannot do without.
func validateNewProduct(input *productFormInput) error {
	switch {
	case !input.NameSet || input.Name == "":
		return errors.New("name is required")
	case !input.PriceSet:
		return errors.New("price is required")
	case !input.QuantitySet:
		return errors.New("quantity is required")
	case !input.CollectionIDSet:
		return errors.New("collection is required")
	case input.Image == nil:
		return errors.New("image is required")
	}
	return nil
}
