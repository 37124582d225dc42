package telephony

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apphttp "callcenter_backend/internal/http"
	"callcenter_backend/platform/config"
	"callcenter_backend/platform/logger"
)

// ModuleConfig combines the config slices the telephony module reads.
type ModuleConfig interface {
	config.TelephonyConfig
	config.ReportingConfig
}

// Module is the telephony bounded context implementing http.Module.
type Module struct {
	service *Service
	cfg     ModuleConfig
}

func NewModule(extensions ExtensionDirectory, cfg ModuleConfig, log *logger.Logger) *Module {
	return &Module{
		service: NewService(NewClient(cfg), extensions, cfg, log),
		cfg:     cfg,
	}
}

func (m *Module) Name() string { return "telephony" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if !m.cfg.IsTelephonyEnabled() {
		return
	}
	ctx.Admin.GET("/telephony/activity", m.activity)
}

// activity handles GET /api/v1/admin/telephony/activity?date=2026-08-31.
// Without a date it reports the current reporting day.
func (m *Module) activity(c *gin.Context) {
	offset := m.cfg.GetReportingDayOffset()
	dayStart := dayStart(time.Now(), offset)

	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		dayStart = day.Add(-offset)
	}

	activities, err := m.service.DailyActivity(c.Request.Context(), dayStart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "telephony report failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": activities, "dayStart": dayStart})
}

func dayStart(now time.Time, offset time.Duration) time.Time {
	shifted := now.UTC().Add(offset)
	day := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(-offset)
}

var _ apphttp.Module = (*Module)(nil)
