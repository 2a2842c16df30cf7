package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"public-complaint-api/middleware"
	"public-complaint-api/services"
)

type ComplaintController struct {
	complaints *services.ComplaintService
}

func NewComplaintController(complaints *services.ComplaintService) *ComplaintController {
	return &ComplaintController{complaints: complaints}
}

// GET /complaints?status=&service_id=&search=&page=
func (cc *ComplaintController) Index(c *gin.Context) {
	q := services.ComplaintQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   queryPage(c),
	}
	if raw := c.Query("service_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			q.ServiceID = uint(id)
		}
	}

	page, err := cc.complaints.List(c.Request.Context(), middleware.CurrentActor(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", page)
}

// POST /complaints (multipart)
func (cc *ComplaintController) Store(c *gin.Context) {
	var in services.SubmitComplaintInput
	if err := c.ShouldBind(&in); err != nil {
		respondBindError(c, err)
		return
	}
	in.Documents = collectFiles(c, "documents")

	complaint, err := cc.complaints.Submit(c.Request.Context(), middleware.CurrentActor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "Complaint submitted successfully", complaint)
}

// GET /complaints/:id
func (cc *ComplaintController) Show(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	complaint, err := cc.complaints.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", complaint)
}

type updateStatusRequest struct {
	Status string  `json:"status" form:"status"`
	Notes  *string `json:"notes" form:"notes"`
}

// PUT|POST /complaints/:id/status (JSON or multipart)
func (cc *ComplaintController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	complaint, err := cc.complaints.UpdateStatus(c.Request.Context(), middleware.CurrentActor(c), id, services.UpdateStatusInput{
		Status:         req.Status,
		Notes:          req.Notes,
		ResultDocument: singleFile(c, "result_document"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Complaint status updated successfully", complaint)
}

type trackRequest struct {
	RegistrationNumber string `json:"registration_number" form:"registration_number"`
}

// POST /complaints/track
func (cc *ComplaintController) Track(c *gin.Context) {
	var req trackRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	if strings.TrimSpace(req.RegistrationNumber) == "" {
		req.RegistrationNumber = c.Query("registration_number")
	}

	complaint, err := cc.complaints.Track(c.Request.Context(), req.RegistrationNumber)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(c, http.StatusNotFound, "Complaint not found")
			return
		}
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", complaint)
}

// GET /complaints-statistics
func (cc *ComplaintController) Statistics(c *gin.Context) {
	stats, err := cc.complaints.Statistics(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "", stats)
}

// GET /complaints/:id/documents/:documentId/download
func (cc *ComplaintController) DownloadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	documentID, ok := pathID(c, "documentId")
	if !ok {
		return
	}
	dl, err := cc.complaints.DocumentDownload(c.Request.Context(), middleware.CurrentActor(c), id, documentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if dl.ContentType != "" {
		c.Header("Content-Type", dl.ContentType)
	}
	c.FileAttachment(dl.Path, dl.Name)
}

// GET /complaints/:id/result/download
func (cc *ComplaintController) DownloadResult(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	dl, err := cc.complaints.ResultDownload(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(dl.Path, dl.Name)
}
