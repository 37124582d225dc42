package telephony

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"callcenter_backend/platform/config"
	"callcenter_backend/platform/logger"
)

// CallLogSource is the slice of the analytics client this service needs.
type CallLogSource interface {
	CallLog(ctx context.Context, extensionID string, from, to time.Time) ([]CallRecord, error)
}

// Extension pairs an agent with their phone system extension.
type Extension struct {
	Username    string
	ExtensionID string
}

// ExtensionDirectory lists the agents that have an extension configured.
type ExtensionDirectory interface {
	ListExtensions(ctx context.Context) ([]Extension, error)
}

// AgentActivity is one agent's phone usage for a day. Utilization, pace and
// gap are all measured against the effective working hours of a shift, not
// the clock day, so a full day on the phones reads near 100, not 25.
type AgentActivity struct {
	Username          string  `json:"username"`
	ExtensionID       string  `json:"extensionId"`
	CallCount         int     `json:"callCount"`
	TalkTimeSec       int64   `json:"talkTimeSec"`
	Utilization       float64 `json:"utilization"`
	CallsPerHour      float64 `json:"callsPerHour"`
	AvgSecBetweenCall float64 `json:"avgSecBetweenCalls"`
	Unavailable       bool    `json:"unavailable"`
}

type Service struct {
	calls      CallLogSource
	extensions ExtensionDirectory
	cfg        config.TelephonyConfig
	log        *logger.Logger
}

func NewService(calls CallLogSource, extensions ExtensionDirectory, cfg config.TelephonyConfig, log *logger.Logger) *Service {
	return &Service{calls: calls, extensions: extensions, cfg: cfg, log: log}
}

// DailyActivity aggregates every configured agent's calls for the day that
// starts at dayStart. A failure for one extension marks that row
// unavailable instead of failing the whole report.
func (s *Service) DailyActivity(ctx context.Context, dayStart time.Time) ([]AgentActivity, error) {
	extensions, err := s.extensions.ListExtensions(ctx)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.Add(24 * time.Hour)
	effectiveSec := s.cfg.GetEffectiveHoursPerDay() * 3600

	activities := make([]AgentActivity, len(extensions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, ext := range extensions {
		g.Go(func() error {
			activity := AgentActivity{Username: ext.Username, ExtensionID: ext.ExtensionID}

			records, err := s.calls.CallLog(gctx, ext.ExtensionID, dayStart, dayEnd)
			if err != nil {
				s.log.Warn("call log unavailable", "extension", ext.ExtensionID, "error", err)
				activity.Unavailable = true
				activities[i] = activity
				return nil
			}

			for _, record := range records {
				activity.CallCount++
				activity.TalkTimeSec += record.DurationSec
			}
			if effectiveSec > 0 {
				activity.Utilization = math.Round(float64(activity.TalkTimeSec)/effectiveSec*1000) / 10
				activity.CallsPerHour = math.Round(float64(activity.CallCount)/s.cfg.GetEffectiveHoursPerDay()*10) / 10
			}
			if activity.CallCount > 0 && effectiveSec > 0 {
				activity.AvgSecBetweenCall = math.Round(effectiveSec / float64(activity.CallCount))
			}
			activities[i] = activity
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return activities, nil
}
