package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hivemotors/carbooking/internal/service/cars"
)

type CarHandler struct {
	service cars.CarUseCase
}

func NewCarHandler(service cars.CarUseCase) *CarHandler {
	return &CarHandler{service: service}
}

func (h *CarHandler) Register(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/reviews", h.reviews)
	router.POST("/", authMiddleware, h.create)
	router.PUT("/:id", authMiddleware, h.update)
	router.DELETE("/:id", authMiddleware, h.delete)
}

func (h *CarHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CarHandler) get(c *gin.Context) {
	car, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) reviews(c *gin.Context) {
	reviews, err := h.service.Reviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *CarHandler) create(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var input cars.CarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, err := h.service.Create(c.Request.Context(), principal, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, car)
}

func (h *CarHandler) update(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var input cars.CarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, err := h.service.Update(c.Request.Context(), principal, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, car)
}

func (h *CarHandler) delete(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "car deleted"})
}
