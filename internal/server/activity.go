package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
	"github.com/commentloop/commentloop/pkg/db/pagination"
)

type listActivityQuery struct {
	AccountID string `form:"account_id"`
	Status    string `form:"status"`
	pagination.Pagination
}

func (s *Server) ListActivity(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query listActivityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	accountID, err := snowflake.ParseString(strings.TrimSpace(query.AccountID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	// The activity feed is account-scoped; the account must belong to
	// the caller.
	account, err := s.accountRepo.FindAccountByID(c.Request.Context(), s.db, accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if account == nil || account.UserID != userID {
		AbortWithError(c, ErrNotFound)
		return
	}

	resp, err := s.ledgerSvc.List(c.Request.Context(), ledgerdomain.ListActivityRequest{
		AccountID:  accountID,
		Status:     ledgerdomain.ExecutionStatus(strings.TrimSpace(query.Status)),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
