package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	"github.com/kaupunki/parking-permits/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export streams the requested listing as an XLSX download. The listing is
// filtered with the same search parameters the list endpoints accept.
func (s *Server) Export(c *gin.Context) {
	var query struct {
		Entity         string `form:"entity"`
		OrderField     string `form:"order_field"`
		OrderDirection string `form:"order_direction"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	search, err := parseSearchItems(
		c.QueryArray("search_field"), c.QueryArray("search_operator"), c.QueryArray("search_value"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	buf, filename, err := s.exportSvc.Export(c.Request.Context(), export.Request{
		Entity:  export.Entity(query.Entity),
		Search:  search,
		OrderBy: parseOrderBy(query.OrderField, query.OrderDirection),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) ListChangelogs(c *gin.Context) {
	entityID, err := parseSnowflakeID(c.Param("entity_id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	entries, err := s.changelogSvc.ListForEntity(c.Request.Context(),
		changelogdomain.EntityType(c.Param("entity_type")), entityID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}
