package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	accountdomain "github.com/commentloop/commentloop/internal/account/domain"
	automationdomain "github.com/commentloop/commentloop/internal/automation/domain"
	"github.com/commentloop/commentloop/internal/channel"
)

type createAutomationRequest struct {
	AccountID snowflake.ID `json:"account_id"`
	Name      string       `json:"name"`

	Scope  automationdomain.Scope `json:"scope"`
	PostID string                 `json:"post_id"`

	TriggerType  automationdomain.TriggerType `json:"trigger_type"`
	TriggerValue string                       `json:"trigger_value"`

	ReplyEnabled bool   `json:"reply_enabled"`
	ReplyText    string `json:"reply_text"`

	DMEnabled      bool             `json:"dm_enabled"`
	DMText         string           `json:"dm_text"`
	DMButtons      []channel.Button `json:"dm_buttons"`
	DMDelaySeconds int              `json:"dm_delay_seconds"`

	DiscountEnabled      bool          `json:"discount_enabled"`
	DiscountPoolID       *snowflake.ID `json:"discount_pool_id"`
	DiscountMessageText  string        `json:"discount_message_text"`
	DiscountFallbackText string        `json:"discount_fallback_text"`

	Priority           int                `json:"priority"`
	StopAfterExecution bool               `json:"stop_after_execution"`
	RequiredTier       accountdomain.Tier `json:"required_tier"`
}

type updateAutomationRequest struct {
	Name         *string `json:"name"`
	TriggerValue *string `json:"trigger_value"`
	ReplyText    *string `json:"reply_text"`
	DMText       *string `json:"dm_text"`
	Priority     *int    `json:"priority"`
	Enabled      *bool   `json:"enabled"`
	StopAfter    *bool   `json:"stop_after_execution"`
}

func (s *Server) CreateAutomation(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createAutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	automation, err := s.automationSvc.Create(c.Request.Context(), automationdomain.CreateAutomationRequest{
		UserID:    userID,
		AccountID: req.AccountID,
		Name:      req.Name,

		Scope:  req.Scope,
		PostID: req.PostID,

		TriggerType:  req.TriggerType,
		TriggerValue: req.TriggerValue,

		ReplyEnabled: req.ReplyEnabled,
		ReplyText:    req.ReplyText,

		DMEnabled:      req.DMEnabled,
		DMText:         req.DMText,
		DMButtons:      req.DMButtons,
		DMDelaySeconds: req.DMDelaySeconds,

		DiscountEnabled:      req.DiscountEnabled,
		DiscountPoolID:       req.DiscountPoolID,
		DiscountMessageText:  req.DiscountMessageText,
		DiscountFallbackText: req.DiscountFallbackText,

		Priority:           req.Priority,
		StopAfterExecution: req.StopAfterExecution,
		RequiredTier:       req.RequiredTier,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, automation)
}

func (s *Server) GetAutomation(c *gin.Context) {
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

	automation, err := s.automationSvc.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, automation)
}

func (s *Server) UpdateAutomation(c *gin.Context) {
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

	var req updateAutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	automation, err := s.automationSvc.Update(c.Request.Context(), automationdomain.UpdateAutomationRequest{
		UserID: userID,
		ID:     id,

		Name:         req.Name,
		TriggerValue: req.TriggerValue,
		ReplyText:    req.ReplyText,
		DMText:       req.DMText,
		Priority:     req.Priority,
		Enabled:      req.Enabled,
		StopAfter:    req.StopAfter,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, automation)
}

func (s *Server) DeleteAutomation(c *gin.Context) {
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

	if err := s.automationSvc.Delete(c.Request.Context(), userID, id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListAutomations(c *gin.Context) {
	userID, ok := CallerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	automations, err := s.automationSvc.List(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"automations": automations})
}

func pathID(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, ErrInvalidRequest
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, ErrInvalidRequest
	}
	return id, nil
}
