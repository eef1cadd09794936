// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/adxyz/adinci/pkg/analytics"
	"github.com/adxyz/adinci/pkg/copygen"
	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/geo"
	"github.com/adxyz/adinci/pkg/ledger"
	"github.com/adxyz/adinci/pkg/log"
	"github.com/adxyz/adinci/pkg/marketplace"
	"github.com/adxyz/adinci/pkg/rental"
)

type apiServer struct {
	market    *marketplace.Marketplace
	generator copygen.Generator
	stats     *analytics.Tracker
	log       log.Logger
}

func (s *apiServer) router() *gin.Engine {
	gin.SetMode(ginMode())

	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
	})

	r.GET("/ws/location", s.handleLocationStream)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/signup", s.signUp)
		api.POST("/auth/login", s.login)
		api.POST("/auth/logout", s.logout)
		api.GET("/auth/me", s.me)

		api.GET("/users", s.listUsers)

		api.GET("/zones", s.listZones)
		api.POST("/zones", s.createZone)
		api.GET("/zones/:id", s.getZone)
		api.PUT("/zones/:id", s.updateZone)
		api.DELETE("/zones/:id", s.deleteZone)
		api.POST("/zones/:id/resize", s.resizeZone)
		api.POST("/zones/:id/activate", s.activateZone)
		api.POST("/zones/:id/deactivate", s.deactivateZone)

		api.GET("/rentals", s.listRentals)
		api.POST("/rentals", s.submitRental)
		api.GET("/rentals/:id", s.getRental)
		api.POST("/rentals/:id/approve", s.approveRental)
		api.POST("/rentals/:id/reject", s.rejectRental)

		api.POST("/wallet/funds", s.addFunds)
		api.POST("/wallet/withdraw", s.withdrawBalance)
		api.POST("/wallet/points/withdraw", s.withdrawPoints)

		api.POST("/location", s.updateLocation)
		api.POST("/watch/start", s.startWatch)
		api.POST("/watch/complete", s.completeWatch)
		api.POST("/watch/claim", s.claimReward)

		api.POST("/adcopy", s.generateAdCopy)

		api.GET("/stats", s.statsSummary)
		api.GET("/stats/zones/:id", s.zoneStats)
		api.GET("/stats/advertisers/:id", s.advertiserStats)
		api.GET("/stats/series", s.statsSeries)

		api.POST("/chats", s.sendMessage)
		api.GET("/chats", s.listChats)
	}

	return r
}

// writeError maps domain errors onto HTTP status codes. Every failure in
// this domain is user-facing and recoverable.
func writeError(c *gin.Context, err error) {
	var insufficient *ledger.InsufficientFundsError

	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     err.Error(),
			"shortfall": insufficient.Shortfall.StringFixed(2),
		})
	case errors.Is(err, marketplace.ErrUserNotFound),
		errors.Is(err, marketplace.ErrZoneNotFound),
		errors.Is(err, marketplace.ErrAdNotFound),
		errors.Is(err, rental.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, marketplace.ErrZoneActive),
		errors.Is(err, rental.ErrNotPending),
		errors.Is(err, rental.ErrNotActive),
		errors.Is(err, marketplace.ErrAlreadyRedeemed),
		errors.Is(err, marketplace.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNoFunds),
		errors.Is(err, ledger.ErrBelowMinWithdrawal):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// shapeRequest is the flat wire form of the zone geometry union
type shapeRequest struct {
	Shape  geo.ShapeKind `json:"shape" binding:"required"`
	Radius float64       `json:"radius"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
}

func (r shapeRequest) toShape() (geo.Shape, error) {
	switch r.Shape {
	case geo.KindCircle:
		if r.Radius <= 0 {
			return nil, errors.New("radius must be positive")
		}
		return geo.Circle{RadiusM: r.Radius}, nil
	case geo.KindRectangle:
		if r.Width <= 0 || r.Height <= 0 {
			return nil, errors.New("width and height must be positive")
		}
		return geo.Rectangle{WidthM: r.Width, HeightM: r.Height}, nil
	default:
		return nil, errors.New("shape must be CIRCLE or RECTANGLE")
	}
}

func (s *apiServer) signUp(c *gin.Context) {
	var req struct {
		Name               string        `json:"name" binding:"required"`
		Email              string        `json:"email" binding:"required"`
		PhoneNumber        string        `json:"phone_number"`
		Type               core.UserType `json:"type" binding:"required"`
		Bio                string        `json:"bio"`
		IsVisuallyImpaired bool          `json:"is_visually_impaired"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := s.market.SignUp(marketplace.SignUpParams{
		Name:               req.Name,
		Email:              req.Email,
		PhoneNumber:        req.PhoneNumber,
		Type:               req.Type,
		Bio:                req.Bio,
		IsVisuallyImpaired: req.IsVisuallyImpaired,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *apiServer) login(c *gin.Context) {
	var req struct {
		Email string        `json:"email" binding:"required"`
		Type  core.UserType `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := s.market.Login(req.Email, req.Type)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *apiServer) logout(c *gin.Context) {
	s.market.Logout()
	c.Status(http.StatusNoContent)
}

func (s *apiServer) me(c *gin.Context) {
	u := s.market.CurrentUser()
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *apiServer) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": s.market.Users()})
}

func (s *apiServer) listZones(c *gin.Context) {
	if owner := c.Query("owner"); owner != "" {
		c.JSON(http.StatusOK, gin.H{"zones": s.market.ZonesByOwner(owner)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": s.market.Zones()})
}

func (s *apiServer) createZone(c *gin.Context) {
	var req struct {
		OwnerID string    `json:"owner_id" binding:"required"`
		Name    string    `json:"name" binding:"required"`
		Center  geo.Point `json:"center" binding:"required"`
		shapeRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shape, err := req.toShape()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	z, err := s.market.CreateZone(req.OwnerID, req.Name, req.Center, shape)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, z)
}

func (s *apiServer) getZone(c *gin.Context) {
	z, ok := s.market.Zone(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "zone not found"})
		return
	}
	c.JSON(http.StatusOK, z)
}

func (s *apiServer) updateZone(c *gin.Context) {
	var req struct {
		Name    *string          `json:"name"`
		Center  *geo.Point       `json:"center"`
		CPM     *decimal.Decimal `json:"price_per_1k"`
		Content *core.AdContent  `json:"ad_content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if req.Name != nil {
		if err := s.market.RenameZone(id, *req.Name); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.Center != nil {
		if err := s.market.MoveZone(id, *req.Center); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.CPM != nil {
		if err := s.market.SetZoneCPM(id, *req.CPM); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.Content != nil {
		if err := s.market.SetZoneContent(id, req.Content); err != nil {
			writeError(c, err)
			return
		}
	}

	z, _ := s.market.Zone(id)
	c.JSON(http.StatusOK, z)
}

func (s *apiServer) deleteZone(c *gin.Context) {
	if err := s.market.DeleteZone(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *apiServer) resizeZone(c *gin.Context) {
	var req struct {
		Area *float64 `json:"area"`
		shapeRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if req.Area != nil {
		if err := s.market.ResizeZoneByArea(id, *req.Area); err != nil {
			writeError(c, err)
			return
		}
	} else {
		shape, err := req.toShape()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := s.market.ResizeZone(id, shape); err != nil {
			writeError(c, err)
			return
		}
	}

	z, _ := s.market.Zone(id)
	c.JSON(http.StatusOK, z)
}

func (s *apiServer) activateZone(c *gin.Context) {
	var req struct {
		Months int `json:"months" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := s.market.ActivateZone(c.Param("id"), req.Months)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"price": price.StringFixed(2), "months": req.Months})
}

func (s *apiServer) deactivateZone(c *gin.Context) {
	if err := s.market.DeactivateZone(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *apiServer) listRentals(c *gin.Context) {
	switch {
	case c.Query("advertiser") != "":
		c.JSON(http.StatusOK, gin.H{"rentals": s.market.RentalsByAdvertiser(c.Query("advertiser"))})
	case c.Query("owner") != "":
		c.JSON(http.StatusOK, gin.H{"rentals": s.market.RentalsForOwner(c.Query("owner"))})
	default:
		c.JSON(http.StatusOK, gin.H{"rentals": s.market.Rentals()})
	}
}

func (s *apiServer) submitRental(c *gin.Context) {
	var req struct {
		ZoneID       string         `json:"zone_id" binding:"required"`
		AdvertiserID string         `json:"advertiser_id" binding:"required"`
		TargetViews  int64          `json:"target_views" binding:"required"`
		AdContent    core.AdContent `json:"ad_content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := s.market.SubmitRental(req.ZoneID, req.AdvertiserID, req.AdContent, req.TargetViews)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *apiServer) getRental(c *gin.Context) {
	r, ok := s.market.Rental(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "rental request not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *apiServer) approveRental(c *gin.Context) {
	if err := s.market.ApproveRental(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	r, _ := s.market.Rental(c.Param("id"))
	c.JSON(http.StatusOK, r)
}

func (s *apiServer) rejectRental(c *gin.Context) {
	if err := s.market.RejectRental(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	r, _ := s.market.Rental(c.Param("id"))
	c.JSON(http.StatusOK, r)
}

func (s *apiServer) addFunds(c *gin.Context) {
	var req struct {
		UserID string          `json:"user_id" binding:"required"`
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.market.AddFunds(req.UserID, req.Amount); err != nil {
		writeError(c, err)
		return
	}
	u, _ := s.market.User(req.UserID)
	c.JSON(http.StatusOK, gin.H{"balance": u.Balance})
}

func (s *apiServer) withdrawBalance(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := s.market.WithdrawOwnerBalance(req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": amount.StringFixed(2)})
}

func (s *apiServer) withdrawPoints(c *gin.Context) {
	var req struct {
		UserID  string `json:"user_id" binding:"required"`
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := s.market.WithdrawPoints(req.UserID, req.Address)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens.String(), "address": req.Address})
}

func (s *apiServer) updateLocation(c *gin.Context) {
	var req struct {
		UserID   string    `json:"user_id" binding:"required"`
		Location geo.Point `json:"location" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collected, err := s.market.UpdateLocation(req.UserID, req.Location)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collected": collected})
}

func (s *apiServer) startWatch(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		AdID   string `json:"ad_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := s.market.StartWatch(req.UserID, req.AdID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": session.Progress()})
}

// completeWatch is the external completion signal (video ended)
func (s *apiServer) completeWatch(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := s.market.WatchSession(req.UserID)
	if session == nil {
		writeError(c, marketplace.ErrNoWatchSession)
		return
	}
	session.Complete()
	c.JSON(http.StatusOK, gin.H{"progress": session.Progress()})
}

func (s *apiServer) claimReward(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		AdID   string `json:"ad_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := s.market.ClaimReward(req.UserID, req.AdID)
	if err != nil {
		writeError(c, err)
		return
	}
	u, _ := s.market.User(req.UserID)
	c.JSON(http.StatusOK, gin.H{"points_earned": points, "points": u.Points})
}

func (s *apiServer) generateAdCopy(c *gin.Context) {
	var req struct {
		ProductName string `json:"product_name" binding:"required"`
		Points      int64  `json:"points" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	copy, err := s.generator.GenerateAdCopy(c.Request.Context(), req.ProductName, req.Points)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, copy)
}

func (s *apiServer) statsSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *apiServer) zoneStats(c *gin.Context) {
	stats := s.stats.Zone(c.Param("id"))
	if stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no activity recorded for zone"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *apiServer) advertiserStats(c *gin.Context) {
	stats := s.stats.Advertiser(c.Param("id"))
	if stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no activity recorded for advertiser"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// statsSeries returns the per-minute activity buckets for the last hour by
// default; start/end accept RFC 3339 timestamps.
func (s *apiServer) statsSeries(c *gin.Context) {
	end := time.Now()
	start := end.Add(-time.Hour)

	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC 3339"})
			return
		}
		start = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC 3339"})
			return
		}
		end = t
	}

	c.JSON(http.StatusOK, gin.H{"buckets": s.stats.Series(start, end)})
}

func (s *apiServer) sendMessage(c *gin.Context) {
	var req struct {
		SenderID    string `json:"sender_id" binding:"required"`
		RecipientID string `json:"recipient_id" binding:"required"`
		Text        string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.market.SendMessage(req.SenderID, req.RecipientID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *apiServer) listChats(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user query parameter required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": s.market.ChatsFor(user)})
}
