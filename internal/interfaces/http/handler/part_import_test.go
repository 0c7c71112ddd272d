package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/shopledger/backend/internal/application/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testAPI) upload(t *testing.T, path, filename, content string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestPartHandler_Import(t *testing.T) {
	api := newTestAPI(t, nil, nil)

	t.Run("multipart upload", func(t *testing.T) {
		w, env := api.upload(t, "/parts/import", "parts.csv",
			"Name,Part_Number,Purchase_Price,Selling_Price,Quantity\n"+
				"Brake Pad,BP-1,400,550,10\n"+
				"Oil Filter,OF-1,80,120,25\n")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		result := decode[catalogapp.ImportResult](t, env)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 2, result.Imported)
		require.Len(t, result.Parts, 2)
		assert.Equal(t, "150", result.Parts[0].Margin.String())

		_, env = api.do(t, http.MethodGet, "/parts", nil)
		assert.Equal(t, int64(2), env.Meta.Total)
	})

	t.Run("raw body with row errors imports nothing", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/parts/import",
			"name,part_number,selling_price\n"+
				"Spark Plug,SP-1,abc\n"+
				"Brake Pad,BP-1,500\n")
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		require.Len(t, env.Error.Details, 2)
		assert.Equal(t, "row 2.selling_price", env.Error.Details[0].Field)
		assert.Equal(t, "row 3.part_number", env.Error.Details[1].Field)

		_, env = api.do(t, http.MethodGet, "/parts", nil)
		assert.Equal(t, int64(2), env.Meta.Total)
	})

	t.Run("missing required column", func(t *testing.T) {
		w, env := api.do(t, http.MethodPost, "/parts/import", "name,quantity\nWiper,3\n")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
		assert.Contains(t, env.Error.Message, "part_number")
	})

	t.Run("missing form file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("note", "no file"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/parts/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
