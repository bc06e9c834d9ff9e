package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	discountdomain "github.com/commentloop/commentloop/internal/discount/domain"
)

type createPoolRequest struct {
	Name  string                  `json:"name"`
	Type  discountdomain.PoolType `json:"type"`
	Codes []string                `json:"codes"`
}

type addCodesRequest struct {
	Codes []string `json:"codes"`
}

func (s *Server) CreateDiscountPool(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	pool, err := s.discountSvc.CreatePool(c.Request.Context(), discountdomain.CreatePoolRequest{
		UserID: userID,
		Name:   req.Name,
		Type:   req.Type,
		Codes:  req.Codes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pool)
}

func (s *Server) GetDiscountPool(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pool, err := s.discountSvc.GetPool(c.Request.Context(), userID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

func (s *Server) AddDiscountCodes(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req addCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.discountSvc.AddCodes(c.Request.Context(), discountdomain.AddCodesRequest{
		UserID: userID,
		PoolID: id,
		Codes:  req.Codes,
	}); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
