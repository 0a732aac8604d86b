package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"synerx-dashboard/config"
	"synerx-dashboard/dto"
	"synerx-dashboard/service"
)

type API struct {
	cfg       *config.Config
	dashboard service.DashboardService
	playback  service.PlaybackService
	upload    service.UploadService
	storage   service.StorageService
	auth      service.AuthService
	feed      service.JobFeed
}

func NewAPI(
	cfg *config.Config,
	dashboard service.DashboardService,
	playback service.PlaybackService,
	upload service.UploadService,
	storage service.StorageService,
	auth service.AuthService,
	feed service.JobFeed,
) *API {
	return &API{
		cfg:       cfg,
		dashboard: dashboard,
		playback:  playback,
		upload:    upload,
		storage:   storage,
		auth:      auth,
		feed:      feed,
	}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

func (a *API) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := a.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *API) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, user, err := a.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrEmailNotConfirmed):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (a *API) requestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// The token goes out through the mail layer; the response is identical
	// whether or not the account exists.
	if _, err := a.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request reset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset email has been sent"})
}

func (a *API) resetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := a.auth.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid), errors.Is(err, service.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (a *API) confirmEmail(c *gin.Context) {
	var req struct {
		UserId string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userId, err := uuid.Parse(req.UserId)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := a.auth.ConfirmEmail(c.Request.Context(), userId); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email confirmed"})
}

func (a *API) updateProfile(c *gin.Context) {
	userId := currentUserId(c)

	var req struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.auth.UpdateProfile(c.Request.Context(), userId, req.FullName, req.AvatarURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

func (a *API) changePassword(c *gin.Context) {
	userId := currentUserId(c)

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := a.auth.ChangePassword(c.Request.Context(), userId, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

func (a *API) systemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.dashboard.SystemStatus(c.Request.Context()))
}

func (a *API) recentActivity(c *gin.Context) {
	entries, err := a.dashboard.RecentActivity(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "activity": []dto.ActivityEntry{}})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (a *API) jobsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": a.feed.Snapshot()})
}

func (a *API) cancelJob(c *gin.Context) {
	jobId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := a.feed.Cancel(c.Request.Context(), jobId); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job cancelled"})
}

func (a *API) analyticsSummary(c *gin.Context) {
	summary, err := a.dashboard.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "summary": dto.AnalyticsSummary{}})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (a *API) analyticsAll(c *gin.Context) {
	records, err := a.dashboard.AllTracking(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "results": []dto.TrackingRecord{}})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (a *API) analyticsReport(c *gin.Context) {
	summary, err := a.dashboard.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	report, err := service.BuildAnalyticsReport(summary, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="synerx-analytics.pdf"`)
	c.Data(http.StatusOK, "application/pdf", report)
}

func (a *API) correlationAnalysis(c *gin.Context) {
	report, err := a.dashboard.Correlation(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (a *API) filterTracking(c *gin.Context) {
	var query struct {
		VehicleType string `form:"vehicle_type"`
		Weather     string `form:"weather_condition"`
		DateFrom    string `form:"date_from"`
		DateTo      string `form:"date_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	var dateFrom, dateTo *time.Time
	if query.DateFrom != "" {
		parsed, err := time.Parse("2006-01-02", query.DateFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_from"})
			return
		}
		dateFrom = &parsed
	}
	if query.DateTo != "" {
		parsed, err := time.Parse("2006-01-02", query.DateTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_to"})
			return
		}
		dateTo = &parsed
	}

	records, err := a.dashboard.FilterTracking(c.Request.Context(), query.VehicleType, query.Weather, dateFrom, dateTo)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "results": []dto.TrackingRecord{}})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (a *API) listVideos(c *gin.Context) {
	var filter dto.VideoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}

	page, err := a.playback.Page(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list videos"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *API) videoResults(c *gin.Context) {
	videoId, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video id"})
		return
	}

	results, err := a.dashboard.VideoResults(c.Request.Context(), videoId)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load video results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (a *API) uploadVideo(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !service.AllowedMIME(contentType) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported video type: " + contentType})
		return
	}

	var userId *uuid.UUID
	if id := currentUserId(c); id != uuid.Nil {
		userId = &id
	}

	video, err := a.upload.Upload(c.Request.Context(), file, header.Filename, contentType, userId)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedMediaType) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	a.playback.Invalidate()
	c.JSON(http.StatusCreated, video)
}

func (a *API) storageInfo(c *gin.Context) {
	info, err := a.storage.Info(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read storage info"})
		return
	}
	c.JSON(http.StatusOK, info)
}

func (a *API) storageVideos(c *gin.Context) {
	objects, err := a.storage.ListVideos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list storage"})
		return
	}
	c.JSON(http.StatusOK, objects)
}

func (a *API) deleteStorageVideos(c *gin.Context) {
	var req struct {
		Names []string `json:"names" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := a.storage.DeleteVideos(c.Request.Context(), req.Names); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete objects"})
		return
	}

	a.playback.Invalidate()
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.Names)})
}

func (a *API) storageCleanup(c *gin.Context) {
	removed, err := a.storage.Cleanup(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (a *API) signedVideoURL(c *gin.Context) {
	signed, err := a.storage.SignedURL(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": signed})
}

func (a *API) downloadVideoURL(c *gin.Context) {
	signed, err := a.storage.DownloadURL(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, signed)
}

func (a *API) videoDetail(c *gin.Context) {
	signed, err := a.storage.SignedURL(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "url": signed})
}
