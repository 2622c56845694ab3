package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// StatusKeyPrefix prefixes the Redis keys holding job statuses.
	StatusKeyPrefix = "job:"

	// StatusTTL keeps a status past the longest gap between two runs.
	StatusTTL = 8 * 24 * time.Hour
)

// Status is the outcome of the latest run of a scheduled job.
type Status struct {
	Job        string        `json:"job"`
	InstanceID string        `json:"instanceId"`
	Running    bool          `json:"running"`
	IsHealthy  bool          `json:"isHealthy"`
	Message    string        `json:"message,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	LastSeen   time.Time     `json:"lastSeen"`
}

// Monitor stores and queries job statuses in Redis.
// A monitor without a client accepts reports and stores nothing.
type Monitor struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewMonitor creates a job status monitor. client may be nil.
func NewMonitor(client rueidis.Client, logger *zap.Logger) *Monitor {
	return &Monitor{
		client: client,
		logger: logger.Named("job_monitor"),
	}
}

// Enabled reports whether statuses are persisted.
func (m *Monitor) Enabled() bool {
	return m.client != nil
}

// ReportStatus stores a job's status with a TTL.
func (m *Monitor) ReportStatus(ctx context.Context, status Status) error {
	if m.client == nil {
		return nil
	}

	status.LastSeen = time.Now()

	data, err := sonic.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	key := fmt.Sprintf("%s%s:%s", StatusKeyPrefix, status.Job, status.InstanceID)

	err = m.client.Do(ctx, m.client.B().Set().Key(key).Value(string(data)).Ex(StatusTTL).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to store status: %w", err)
	}

	return nil
}

// GetAllStatuses retrieves every stored job status ordered by job name.
func (m *Monitor) GetAllStatuses(ctx context.Context) ([]Status, error) {
	if m.client == nil {
		return nil, nil
	}

	keys, err := m.client.Do(ctx, m.client.B().Keys().Pattern(StatusKeyPrefix+"*").Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to get job keys: %w", err)
	}

	statuses := make([]Status, 0, len(keys))

	for _, key := range keys {
		data, err := m.client.Do(ctx, m.client.B().Get().Key(key).Build()).AsBytes()
		if err != nil {
			m.logger.Error("Failed to get job status", zap.String("key", key), zap.Error(err))
			continue
		}

		var status Status
		if err := sonic.Unmarshal(data, &status); err != nil {
			m.logger.Error("Failed to unmarshal job status", zap.String("key", key), zap.Error(err))
			continue
		}

		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Job != statuses[j].Job {
			return statuses[i].Job < statuses[j].Job
		}
		return statuses[i].StartedAt.After(statuses[j].StartedAt)
	})

	return statuses, nil
}

// StatusReporter tracks the runs of one job for one process.
type StatusReporter struct {
	monitor *Monitor
	status  Status
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewStatusReporter creates a reporter for a job.
func NewStatusReporter(monitor *Monitor, job string, logger *zap.Logger) *StatusReporter {
	return &StatusReporter{
		monitor: monitor,
		status: Status{
			Job:        job,
			InstanceID: uuid.New().String(),
			IsHealthy:  true,
		},
		logger: logger.Named("status_reporter"),
	}
}

// Begin marks the job as running.
func (r *StatusReporter) Begin(ctx context.Context) {
	r.mu.Lock()
	r.status.Running = true
	r.status.StartedAt = time.Now()
	r.status.Message = ""
	status := r.status
	r.mu.Unlock()

	r.report(ctx, status)
}

// Finish records the run outcome. A non-nil err marks the job unhealthy.
func (r *StatusReporter) Finish(ctx context.Context, message string, err error) {
	r.mu.Lock()
	r.status.Running = false
	r.status.Duration = time.Since(r.status.StartedAt)
	r.status.IsHealthy = err == nil
	r.status.Message = message
	if err != nil {
		r.status.Message = err.Error()
	}
	status := r.status
	r.mu.Unlock()

	r.report(ctx, status)
}

// Status returns a copy of the current status.
func (r *StatusReporter) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.status
}

func (r *StatusReporter) report(ctx context.Context, status Status) {
	// A job outcome never depends on its status being stored
	if err := r.monitor.ReportStatus(ctx, status); err != nil {
		r.logger.Warn("Failed to report job status",
			zap.String("job", status.Job),
			zap.Error(err))
	}
}
