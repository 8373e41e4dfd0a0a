package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"underwriter/internal/service"
	"underwriter/internal/underwriting"
)

// Router exposes the decide operation and decision-log reads.
type Router struct {
	svc *service.DecisionService
}

func NewRouter(svc *service.DecisionService) *Router {
	return &Router{svc: svc}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/decide", r.handleDecide)
	group.GET("/decisions", r.handleDecisions)
	group.GET("/decisions/:request_id", r.handleDecisionByRequestID)
}

type decideRequest struct {
	Application underwriting.Application `json:"application"`
	Scope       underwriting.AccessScope `json:"scope"`
}

// handleDecide never maps a dependency outage to an error response; the
// workflow absorbs those. A 500 here means an invariant bug surfaced.
func (r *Router) handleDecide(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return
	}
	decision, err := r.svc.Decide(c.Request.Context(), &req.Application, req.Scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, decision)
}

func (r *Router) handleDecisions(c *gin.Context) {
	logs := r.svc.Logs()
	if logs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "decision log disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := logs.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": records})
}

func (r *Router) handleDecisionByRequestID(c *gin.Context) {
	logs := r.svc.Logs()
	if logs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "decision log disabled"})
		return
	}
	rec, err := logs.ByRequestID(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "decision not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
