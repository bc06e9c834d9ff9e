package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	enginedomain "github.com/commentloop/commentloop/internal/engine/domain"
	ledgerdomain "github.com/commentloop/commentloop/internal/ledger/domain"
)

type processCommentRequest struct {
	AccountID         snowflake.ID `json:"account_id"`
	PostID            string       `json:"post_id"`
	CommentID         string       `json:"comment_id"`
	Text              string       `json:"text"`
	CommenterID       string       `json:"commenter_id"`
	CommenterUsername string       `json:"commenter_username"`
	IsFromOwner       bool         `json:"is_from_owner"`
}

type processCommentResponse struct {
	Ignored bool                                    `json:"ignored"`
	Reason  string                                  `json:"reason,omitempty"`
	Results []ledgerdomain.ProcessedAutomationEvent `json:"results"`
}

func (s *Server) ProcessComment(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req processCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	comment := enginedomain.NormalizedComment{
		AccountID:         req.AccountID,
		PostID:            req.PostID,
		CommentID:         req.CommentID,
		Text:              req.Text,
		CommenterID:       req.CommenterID,
		CommenterUsername: req.CommenterUsername,
		IsFromOwner:       req.IsFromOwner,
	}

	events, err := s.engineSvc.ProcessComment(c.Request.Context(), comment, userID, req.AccountID)
	if err != nil {
		// Owner comments are acknowledged, not rejected: the webhook
		// source should not retry them.
		if errors.Is(err, enginedomain.ErrOwnerComment) {
			c.JSON(http.StatusOK, processCommentResponse{
				Ignored: true,
				Reason:  "comment_from_owner",
				Results: []ledgerdomain.ProcessedAutomationEvent{},
			})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, processCommentResponse{Results: events})
}
