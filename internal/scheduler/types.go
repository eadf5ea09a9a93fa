// Package scheduler runs the bot's daily jobs: the end-of-day summary with
// the streak reward, the midnight rollover and the morning weather report.
// The same DailyJobs value backs the in-process cron of cmd/bot and the
// EventBridge-triggered cmd/daily-jobs Lambda.
package scheduler

import (
	"fmt"
	"time"

	"smokebuddy/internal/types"
)

// TaskType identifies a daily job.
type TaskType string

const (
	TaskSummarizeDay  TaskType = "summarize_day"
	TaskResetDaily    TaskType = "reset_daily"
	TaskWeatherReport TaskType = "weather_report"
)

// AllTasks lists every task in registration order.
var AllTasks = []TaskType{TaskSummarizeDay, TaskResetDaily, TaskWeatherReport}

// ParseTaskType validates s as a TaskType.
func ParseTaskType(s string) (TaskType, error) {
	for _, t := range AllTasks {
		if string(t) == s {
			return t, nil
		}
	}
	return "", types.NewAppError(
		types.ErrCodeValidationUnknownTask,
		fmt.Sprintf("unknown task type %q", s),
		nil,
	)
}

// JobPayload is the JSON payload EventBridge sends to cmd/daily-jobs:
//
//	{
//	  "task": "summarize_day",
//	  "reference_time": "2026-02-06T15:55:00Z"  // optional
//	}
type JobPayload struct {
	Task TaskType `json:"task"`
	// ReferenceTime records when the trigger was meant to fire. It is logged
	// for traceability; day boundaries are always taken from the clock.
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
}
