package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/futamarket/market-backend/api/responses"
	"github.com/futamarket/market-backend/api/validators"
	"github.com/futamarket/market-backend/internal/media"
	product "github.com/futamarket/market-backend/internal/products"
	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/futamarket/market-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	fieldImages = "images"
	fieldVideo  = "video"
)

type productForm struct {
	Title     *string
	Price     string `form:"price" validate:"omitempty,numeric"`
	Available string
	Section   *string
	Short     *string
	Full      *string
	Location  *string
}

func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}

// CreateProduct accepts a multipart body capped at maxBytes.
func CreateProduct(svc product.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := decodeMutation(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, created)
	}
}

func UpdateProduct(svc product.Service, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := decodeMutation(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Product deleted everywhere")
	}
}

// decodeMutation turns the multipart body into the typed workflow input.
func decodeMutation(w http.ResponseWriter, r *http.Request, maxBytes int64) (product.MutationInput, error) {
	if err := validators.ParseMultipart(w, r, maxBytes); err != nil {
		return product.MutationInput{}, err
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := productForm{
		Title:    optionalValue(r, "title"),
		Section:  optionalValue(r, "section"),
		Short:    optionalValue(r, "short"),
		Full:     optionalValue(r, "full"),
		Location: optionalValue(r, "location"),
	}
	form.Price, _ = validators.FormValue(r, "price")
	form.Price = strings.TrimSpace(form.Price)
	form.Available, _ = validators.FormValue(r, "available")
	if err := validators.ValidateStruct(&form); err != nil {
		return product.MutationInput{}, err
	}

	fields := product.Fields{
		Title:     form.Title,
		Available: product.ParseAvailable(form.Available),
		Section:   form.Section,
		Short:     form.Short,
		Full:      form.Full,
		Location:  form.Location,
	}
	if form.Price != "" {
		price, err := strconv.ParseFloat(form.Price, 64)
		if err != nil {
			return product.MutationInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a number")
		}
		fields.Price = &price
	}

	imageParts := append([]*multipart.FileHeader{}, validators.Files(r, fieldImages)...)
	imageParts = append(imageParts, validators.Files(r, fieldImages+"[]")...)
	images, err := readBlobs(imageParts)
	if err != nil {
		return product.MutationInput{}, err
	}
	input := product.MutationInput{Fields: fields, Images: images}

	if videos := validators.Files(r, fieldVideo); len(videos) > 0 {
		blobs, err := readBlobs(videos[:1])
		if err != nil {
			return product.MutationInput{}, err
		}
		input.Video = &blobs[0]
	}
	return input, nil
}

func optionalValue(r *http.Request, field string) *string {
	v, ok := validators.FormValue(r, field)
	if !ok {
		return nil
	}
	return &v
}

func readBlobs(headers []*multipart.FileHeader) ([]media.Blob, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	blobs := make([]media.Blob, 0, len(headers))
	for _, fh := range headers {
		data, err := validators.ReadFile(fh)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload "+fh.Filename)
		}
		blobs = append(blobs, media.Blob{FileName: fh.Filename, Data: data})
	}
	return blobs, nil
}
