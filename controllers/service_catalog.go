package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"public-complaint-api/middleware"
	"public-complaint-api/services"
)

type ServiceController struct {
	catalog *services.CatalogService
}

func NewServiceController(catalog *services.CatalogService) *ServiceController {
	return &ServiceController{catalog: catalog}
}

// GET /services?category=&search=&page=
func (sc *ServiceController) Index(c *gin.Context) {
	page, err := sc.catalog.List(c.Request.Context(), middleware.CurrentActor(c), services.ServiceQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     queryPage(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", page)
}

// GET /services/:id
func (sc *ServiceController) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	svc, err := sc.catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", svc)
}

// GET /services-categories
func (sc *ServiceController) Categories(c *gin.Context) {
	categories, err := sc.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", categories)
}

// POST /services
func (sc *ServiceController) Store(c *gin.Context) {
	var in services.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	svc, err := sc.catalog.Create(c.Request.Context(), middleware.CurrentActor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Layanan berhasil dibuat", svc)
}

// PUT /services/:id
func (sc *ServiceController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	svc, err := sc.catalog.Update(c.Request.Context(), middleware.CurrentActor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Layanan berhasil diperbarui", svc)
}

// DELETE /services/:id
func (sc *ServiceController) Destroy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := sc.catalog.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Layanan berhasil dihapus", nil)
}
