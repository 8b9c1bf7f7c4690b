package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/importers"
)

const importPath = "/api/users/" + testUser + "/import/pgn"

const italianPGN = `[Event "Italian Game"]
[Result "*"]

{Main ideas} 1. e4 e5 2. Nf3 Nc6 (2... d6 $6) 3. Bc4 *
`

func TestImportController_JSON(t *testing.T) {
	f := setupAPI(t)

	w := f.do(t, "POST", importPath, ImportPGNRequest{PGN: italianPGN})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	result := decode[importers.ImportResult](t, w)
	assert.Equal(t, 1, result.Games)
	assert.Equal(t, "Italian Game", result.Book.Name)
	assert.Equal(t, entities.BookTypeOpening, result.Book.Type)
	assert.Equal(t, 2, result.Book.LineCount)

	w = f.do(t, "GET", booksPath+"/"+result.Book.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	book := decode[entities.Book](t, w)
	require.NotNil(t, book.RootNode)
	assert.Equal(t, "Main ideas", book.RootNode.Comment)
	d6 := book.RootNode.Child("e4").Child("e5").Child("Nf3").Child("d6")
	require.NotNil(t, d6)
	assert.Equal(t, []int{6}, d6.Nags)
}

func TestImportController_RawBody(t *testing.T) {
	f := setupAPI(t)

	req := httptest.NewRequest("POST", importPath+"?name=My+Italian&color=b", strings.NewReader(italianPGN))
	req.Header.Set("Content-Type", "application/x-chess-pgn")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[importers.ImportResult](t, w)
	assert.Equal(t, "My Italian", result.Book.Name)
	assert.Equal(t, entities.ColorBlack, result.Book.Color)
}

func TestImportController_Rejects(t *testing.T) {
	f := setupAPI(t)

	tests := []struct {
		name string
		body any
	}{
		{"empty pgn", ImportPGNRequest{PGN: "   "}},
		{"missing pgn", map[string]string{"name": "x"}},
		{"broken pgn", ImportPGNRequest{PGN: "1. e4 ) *"}},
		{"unknown type", ImportPGNRequest{PGN: italianPGN, Options: importers.Options{Type: "puzzle"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, "POST", importPath, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := f.do(t, "GET", booksPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count": 0`)
}
