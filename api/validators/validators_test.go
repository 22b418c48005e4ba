package validators

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/futamarket/market-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type titleBody struct {
	Title string `json:"title" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	var body titleBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Books","extra":1}`))
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, "Books", body.Title)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	body = titleBody{}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	err = DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"title": "is required"}, typed.Details())
}

type priceForm struct {
	Price string `form:"price" validate:"omitempty,numeric"`
}

func TestValidateStructNumeric(t *testing.T) {
	assert.NoError(t, ValidateStruct(&priceForm{Price: "5000"}))
	assert.NoError(t, ValidateStruct(&priceForm{Price: "12.5"}))
	assert.NoError(t, ValidateStruct(&priceForm{}))

	err := ValidateStruct(&priceForm{Price: "cheap"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{"price": "must be a number"}, typed.Details())
}

func multipartRequest(t *testing.T, fields map[string]string, fileSize int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileSize > 0 {
		part, err := mw.CreateFormFile("images", "a.png")
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{1}, fileSize))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseMultipart(t *testing.T) {
	req := multipartRequest(t, map[string]string{"title": "Fan"}, 16)
	require.NoError(t, ParseMultipart(httptest.NewRecorder(), req, 1<<20))

	title, ok := FormValue(req, "title")
	assert.True(t, ok)
	assert.Equal(t, "Fan", title)
	_, ok = FormValue(req, "price")
	assert.False(t, ok)

	files := Files(req, "images")
	require.Len(t, files, 1)
	data, err := ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, data, 16)
}

func TestParseMultipartRejectsOversizedBody(t *testing.T) {
	req := multipartRequest(t, nil, 2<<20)
	err := ParseMultipart(httptest.NewRecorder(), req, 1<<20)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseMultipartRejectsNonMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	err := ParseMultipart(httptest.NewRecorder(), req, 1<<20)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseMultipartAcceptsURLEncoded(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/products/1", strings.NewReader("title=Lamp&available=true"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, ParseMultipart(httptest.NewRecorder(), req, 1<<20))

	title, ok := FormValue(req, "title")
	assert.True(t, ok)
	assert.Equal(t, "Lamp", title)
	assert.Empty(t, Files(req, "images"))
}
