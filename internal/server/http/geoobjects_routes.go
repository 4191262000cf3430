package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	geoobjectsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/geoobjects"
	"github.com/shootingdapp/cms/internal/service/geoobjects"
)

func (s *Server) addGeoObjectsRoutes(r *gin.Engine) {
	// Assignment delegates to the game server; no local geo-object record is
	// touched here. Local records are bookkeeping managed by the CRUD below.
	r.POST("/api/geo-objects/assign", func(c *gin.Context) {
		var req geoobjects.AssignRequest
		if err := c.BindJSON(&req); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		out, err := s.geo.Assign(c.Request.Context(), req)
		if err != nil {
			s.respondSyncError(c, err)
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("geo_object_assign", user, req.PlayerID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, out)
	})

	r.GET("/api/geo-objects", func(c *gin.Context) {
		page, limit, offset := pageParams(c)
		db := s.db.Model(&geoobjectsgorm.GeoObjectRecord{})
		if typ := c.Query("type"); typ != "" {
			db = db.Where("type = ?", typ)
		}
		var total int64
		if err := db.Count(&total).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "count failed")
			return
		}
		var arr []geoobjectsgorm.GeoObjectRecord
		if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&arr).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "list failed")
			return
		}
		s.JSON(c, http.StatusOK, pageBody(arr, total, page, limit))
	})

	r.GET("/api/geo-objects/:id", func(c *gin.Context) {
		var rec geoobjectsgorm.GeoObjectRecord
		if err := s.db.Where("object_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "GeoObject not found")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.POST("/api/geo-objects", func(c *gin.Context) {
		var in struct {
			ObjectID  string         `json:"id" binding:"required"`
			Type      string         `json:"type" binding:"required,oneof=weapon target powerup"`
			Latitude  float64        `json:"latitude"`
			Longitude float64        `json:"longitude"`
			Altitude  float64        `json:"altitude"`
			Active    *bool          `json:"active"`
			Metadata  datatypes.JSON `json:"metadata"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		rec := geoobjectsgorm.GeoObjectRecord{
			ObjectID: in.ObjectID, Type: in.Type,
			Latitude: in.Latitude, Longitude: in.Longitude, Altitude: in.Altitude,
			Active: true, Metadata: in.Metadata,
		}
		if in.Active != nil {
			rec.Active = *in.Active
		}
		if err := s.db.Create(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "create failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("geo_object_create", user, rec.ObjectID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusCreated, rec)
	})

	r.PUT("/api/geo-objects/:id", func(c *gin.Context) {
		var in struct {
			Type      *string        `json:"type"`
			Latitude  *float64       `json:"latitude"`
			Longitude *float64       `json:"longitude"`
			Altitude  *float64       `json:"altitude"`
			Active    *bool          `json:"active"`
			Metadata  datatypes.JSON `json:"metadata"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		var rec geoobjectsgorm.GeoObjectRecord
		if err := s.db.Where("object_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "GeoObject not found")
			return
		}
		if in.Type != nil {
			rec.Type = *in.Type
		}
		if in.Latitude != nil {
			rec.Latitude = *in.Latitude
		}
		if in.Longitude != nil {
			rec.Longitude = *in.Longitude
		}
		if in.Altitude != nil {
			rec.Altitude = *in.Altitude
		}
		if in.Active != nil {
			rec.Active = *in.Active
		}
		if in.Metadata != nil {
			rec.Metadata = in.Metadata
		}
		if err := s.db.Save(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "update failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("geo_object_update", user, rec.ObjectID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, rec)
	})

	r.DELETE("/api/geo-objects/:id", func(c *gin.Context) {
		res := s.db.Where("object_id = ?", c.Param("id")).Delete(&geoobjectsgorm.GeoObjectRecord{})
		if res.Error != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "delete failed")
			return
		}
		if res.RowsAffected == 0 {
			s.respondError(c, http.StatusNotFound, "not_found", "GeoObject not found")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("geo_object_delete", user, c.Param("id"), map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, gin.H{"message": "GeoObject deleted"})
	})
}
