// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/geo"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Demo surface; the map client runs on a different origin
	CheckOrigin: func(*http.Request) bool { return true },
}

// locationFrame is one cursor update from the map surface
type locationFrame struct {
	Location geo.Point `json:"location"`
}

// collectionFrame reports ads collected at the new location
type collectionFrame struct {
	Collected []*core.CollectedAd `json:"collected"`
}

// handleLocationStream upgrades the connection and feeds each incoming
// coordinate update into the marketplace. Every frame answers with the ads
// the move collected, empty when none.
func (s *apiServer) handleLocationStream(c *gin.Context) {
	userID := c.Query("user")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user query parameter required"})
		return
	}
	if _, ok := s.market.User(userID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.log.Info("location stream opened", zap.String("user", userID))

	for {
		var frame locationFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("location stream error", zap.Error(err))
			}
			return
		}

		collected, err := s.market.UpdateLocation(userID, frame.Location)
		if err != nil {
			s.log.Warn("location update rejected",
				zap.String("user", userID),
				zap.Error(err))
			continue
		}

		if err := conn.WriteJSON(collectionFrame{Collected: collected}); err != nil {
			return
		}
	}
}
