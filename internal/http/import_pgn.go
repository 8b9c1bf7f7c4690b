package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/linebook/internal/database/books"
	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/importers"
	"github.com/mrlokans/linebook/internal/logger"
)

// maxPGNSize caps uploaded PGN bodies.
const maxPGNSize = 10 << 20

// ImportPGNRequest is the JSON body of ImportPGN.
type ImportPGNRequest struct {
	PGN string `json:"pgn" binding:"required"`
	importers.Options
}

type ImportController struct {
	importer PGNImporter
	log      *logger.Logger
}

func NewImportController(importer PGNImporter, log *logger.Logger) *ImportController {
	return &ImportController{
		importer: importer,
		log:      logger.OrNop(log),
	}
}

// ImportPGN stores a PGN file as a new book. The body is either JSON
// ({"pgn": ..., "type": ..., "name": ..., "color": ...}) or the raw PGN
// text with the options as query parameters.
// POST /api/users/:userId/import/pgn
func (ic *ImportController) ImportPGN(c *gin.Context) {
	userID, ok := requireParam(c, "userId")
	if !ok {
		return
	}

	var req ImportPGNRequest
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid import payload: "+err.Error())
			return
		}
	} else {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPGNSize))
		if err != nil {
			respondBadRequest(c, "failed to read request body")
			return
		}
		req.PGN = string(body)
		req.Type = entities.BookType(c.Query("type"))
		req.Name = c.Query("name")
		req.Color = entities.Color(c.Query("color"))
	}
	if strings.TrimSpace(req.PGN) == "" {
		respondBadRequest(c, "pgn is required")
		return
	}

	result, err := ic.importer.ImportPGN(c.Request.Context(), userID, req.PGN, req.Options)
	if err != nil {
		if errors.Is(err, importers.ErrInvalidPGN) || errors.Is(err, importers.ErrNoGames) || errors.Is(err, books.ErrInvalidBook) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, ic.log, err, "import pgn")
		return
	}
	c.JSON(http.StatusCreated, result)
}
