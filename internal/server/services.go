package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/sevadesk/internal/catalog"
	"github.com/smallbiznis/sevadesk/internal/providers/pdf"
	sevadomain "github.com/smallbiznis/sevadesk/internal/seva/domain"
)

type createServiceRequest struct {
	InvoiceType       string              `json:"invoiceType"`
	Frequency         string              `json:"frequency"`
	PaymentMethod     string              `json:"paymentMethod"`
	DevoteeName       string              `json:"devoteeName"`
	DevoteeContactNum string              `json:"devoteeContactNum"`
	Gothram           string              `json:"gothram"`
	PujaDetails       string              `json:"pujaDetails"`
	Address           *sevadomain.Address `json:"address"`
}

// serviceResponse is the print payload the desk renders after issuing a service.
type serviceResponse struct {
	ID                string              `json:"id"`
	InvoiceType       string              `json:"invoiceType"`
	ServiceType       int                 `json:"serviceType"`
	ServiceName       string              `json:"serviceName"`
	Frequency         string              `json:"frequency"`
	PaymentMethod     string              `json:"paymentMethod"`
	Amount            string              `json:"amount"`
	ValidTill         string              `json:"validTill"`
	CreatedAt         string              `json:"createdAt"`
	DevoteeName       string              `json:"devoteeName"`
	DevoteeContactNum string              `json:"devoteeContactNum"`
	Gothram           string              `json:"gothram"`
	PujaDetails       string              `json:"pujaDetails"`
	Address           *sevadomain.Address `json:"address"`
}

func newServiceResponse(r sevadomain.ServiceRecord) serviceResponse {
	resp := serviceResponse{
		ID:                r.InvoiceID,
		InvoiceType:       string(r.InvoiceKind),
		ServiceType:       int(r.ServiceCategory),
		ServiceName:       r.DisplayName(),
		Frequency:         string(r.Frequency),
		PaymentMethod:     string(r.PaymentMethod),
		Amount:            r.Amount.StringFixed(2),
		ValidTill:         r.ValidUntil.UTC().Format(time.RFC3339),
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
		DevoteeName:       r.DevoteeName,
		DevoteeContactNum: r.ContactNumber,
		Gothram:           r.Gothram,
		PujaDetails:       r.PujaDetails,
	}
	if r.Address.Address1 != "" {
		address := r.Address
		resp.Address = &address
	}
	return resp
}

func (s *Server) CreateService(c *gin.Context) {
	serviceType, err := strconv.Atoi(strings.TrimSpace(c.Query("serviceType")))
	if err != nil {
		AbortWithError(c, newValidationError("serviceType", "invalid_service_type", "serviceType must be a catalog id"))
		return
	}

	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.sevaSvc.Create(c.Request.Context(), sevadomain.CreateServiceRequest{
		Category:      catalog.Category(serviceType),
		Kind:          req.InvoiceType,
		Frequency:     req.Frequency,
		PaymentMethod: req.PaymentMethod,
		DevoteeName:   req.DevoteeName,
		ContactNumber: req.DevoteeContactNum,
		Gothram:       req.Gothram,
		PujaDetails:   req.PujaDetails,
		Address:       req.Address,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_id", record.InvoiceID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Service created successfully",
		"data":    newServiceResponse(record),
	})
}

func (s *Server) GetService(c *gin.Context) {
	record, err := s.sevaSvc.GetByInvoiceID(c.Request.Context(), c.Param("invoiceId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("invoice_id", record.InvoiceID)
	c.JSON(http.StatusOK, gin.H{"data": newServiceResponse(record)})
}

func (s *Server) RenderServiceSlip(c *gin.Context) {
	ctx := c.Request.Context()
	record, err := s.sevaSvc.GetByInvoiceID(ctx, c.Param("invoiceId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("invoice_id", record.InvoiceID)

	doc, err := s.pdf.GenerateSlip(ctx, pdf.NewSlip(s.cfg.TempleName, record))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+record.InvoiceID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
